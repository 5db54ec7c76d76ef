package retrain

import (
	"sync/atomic"

	"github.com/okian/skillmatch/internal/domain/vocab"
)

// Registry holds the active model. Readers always see either the previous or
// the next model in full, never a mix.
type Registry struct {
	current atomic.Pointer[vocab.Model]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Current returns the active model or nil before the first publish.
func (r *Registry) Current() *vocab.Model {
	return r.current.Load()
}

// Publish makes m the active model. A nil model is ignored.
func (r *Registry) Publish(m *vocab.Model) {
	if m == nil {
		return
	}
	r.current.Store(m)
}
