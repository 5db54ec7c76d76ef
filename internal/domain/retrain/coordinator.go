// Package retrain rebuilds the vocabulary model from a fresh snapshot and
// swaps it in atomically.
package retrain

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/skills"
	"github.com/okian/skillmatch/internal/domain/vocab"
	"github.com/okian/skillmatch/pkg/logger"
)

// DefaultTimeout bounds a whole retrain, fetch included.
const DefaultTimeout = 2 * time.Minute

// Loader produces the training snapshot.
type Loader interface {
	Load(ctx context.Context) ([]model.FreelancerRecord, error)
}

// ModelStore persists the trained model so a restart can reuse it.
type ModelStore interface {
	Save(ctx context.Context, m *vocab.Model) error
	// Load returns ErrNoArtifact when nothing was saved yet.
	Load(ctx context.Context) (*vocab.Model, error)
}

// Summary describes a successful retrain.
type Summary struct {
	FreelancerCount int
	Skipped         int // records without skills, left out of the corpus
	VocabularySize  int
	Version         string
	TrainedAt       time.Time
	Duration        time.Duration
}

// Option applies a configuration option to the Coordinator.
type Option func(*Coordinator)

// WithStore persists every newly trained model before it goes live.
func WithStore(store ModelStore) Option {
	return func(c *Coordinator) {
		c.store = store
	}
}

// WithTimeout bounds a retrain.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Coordinator) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// Coordinator runs at most one retrain at a time and publishes its result
// to a Registry. A failed retrain never replaces the active model.
type Coordinator struct {
	mu       sync.Mutex
	running  atomic.Bool
	last     atomic.Pointer[Summary]
	loader   Loader
	registry *Registry
	store    ModelStore
	timeout  time.Duration
	logger   logger.Logger
}

// NewCoordinator creates a Coordinator publishing into registry.
func NewCoordinator(loader Loader, registry *Registry, opts ...Option) *Coordinator {
	c := &Coordinator{
		loader:   loader,
		registry: registry,
		timeout:  DefaultTimeout,
		logger:   logger.Nop(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Retrain loads a snapshot, trains a model on it, persists it and then
// publishes it. A concurrent call is rejected with ErrRetrainInProgress.
func (c *Coordinator) Retrain(ctx context.Context) (Summary, error) {
	if !c.mu.TryLock() {
		return Summary{}, ErrRetrainInProgress
	}
	defer c.mu.Unlock()
	c.running.Store(true)
	defer c.running.Store(false)

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	records, err := c.loader.Load(ctx)
	if err != nil {
		return Summary{}, c.fail(ctx, "load snapshot", err)
	}

	corpus := make([]skills.Set, 0, len(records))
	for _, r := range records {
		if r.Skills.IsEmpty() {
			continue
		}
		corpus = append(corpus, r.Skills)
	}

	m, err := vocab.Train(corpus)
	if err != nil {
		return Summary{}, c.fail(ctx, "train", err)
	}
	// Training ignores ctx; an expired deadline still aborts before publish.
	if err := ctx.Err(); err != nil {
		return Summary{}, c.fail(ctx, "train", err)
	}

	if c.store != nil {
		if err := c.store.Save(ctx, m); err != nil {
			return Summary{}, c.fail(ctx, "persist", err)
		}
	}
	c.registry.Publish(m)

	sum := Summary{
		FreelancerCount: len(corpus),
		Skipped:         len(records) - len(corpus),
		VocabularySize:  m.Size(),
		Version:         m.Version(),
		TrainedAt:       m.TrainedAt(),
		Duration:        time.Since(start),
	}
	c.last.Store(&sum)

	c.logger.Info(ctx, "model retrained",
		logger.String("version", sum.Version),
		logger.Int("freelancers", sum.FreelancerCount),
		logger.Int("skipped", sum.Skipped),
		logger.Int("vocabulary", sum.VocabularySize),
		logger.Duration("took", sum.Duration),
	)
	return sum, nil
}

func (c *Coordinator) fail(ctx context.Context, step string, err error) error {
	c.logger.Error(ctx, "retrain aborted, keeping active model",
		logger.String("step", step),
		logger.Error(err),
	)
	return fmt.Errorf("%w: %s: %w", ErrRetrainFailed, step, err)
}

// Restore publishes the persisted model, if any. It returns ErrNoArtifact
// when no store is configured or the store is empty.
func (c *Coordinator) Restore(ctx context.Context) (*vocab.Model, error) {
	if c.store == nil {
		return nil, ErrNoArtifact
	}
	m, err := c.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	c.registry.Publish(m)

	c.logger.Info(ctx, "model restored",
		logger.String("version", m.Version()),
		logger.Int("vocabulary", m.Size()),
		logger.String("trained_at", m.TrainedAt().Format(time.RFC3339)),
	)
	return m, nil
}

// Current returns the active model or nil.
func (c *Coordinator) Current() *vocab.Model {
	return c.registry.Current()
}

// Running reports whether a retrain is executing right now.
func (c *Coordinator) Running() bool {
	return c.running.Load()
}

// Last returns the summary of the most recent successful retrain.
func (c *Coordinator) Last() (Summary, bool) {
	s := c.last.Load()
	if s == nil {
		return Summary{}, false
	}
	return *s, true
}
