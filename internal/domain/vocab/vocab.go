// Package vocab trains and applies the skill vocabulary model.
//
// A Model maps every skill phrase seen at training time to a fixed vector
// dimension and an inverse-document-frequency weight. Models are immutable
// once built; a retrain produces a new Model instead of touching the old one.
package vocab

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/okian/skillmatch/internal/domain/skills"
)

// Model is a trained, read-only vocabulary.
type Model struct {
	version    string
	trainedAt  time.Time
	corpusSize int

	terms   []string       // sorted; position is the dimension index
	index   map[string]int // term -> position in terms
	weights []float64      // idf weight per dimension
}

// Train builds a Model from one skill set per freelancer.
//
// Terms are ordered lexicographically so identical input always yields the
// same vocabulary and weights. Weights use smoothed IDF:
//
//	idf(t) = ln((1+N)/(1+df(t))) + 1
//
// which stays finite for every df and bottoms out at 1 for terms present in
// all sets.
func Train(corpus []skills.Set) (*Model, error) {
	if len(corpus) == 0 {
		return nil, fmt.Errorf("%w: no freelancers", ErrEmptyCorpus)
	}

	df := make(map[string]int)
	for _, set := range corpus {
		set.Each(func(term string) { df[term]++ })
	}
	if len(df) == 0 {
		return nil, fmt.Errorf("%w: no skill terms in %d freelancers", ErrEmptyCorpus, len(corpus))
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(corpus))
	weights := make([]float64, len(terms))
	for i, term := range terms {
		weights[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	return newModel(uuid.NewString(), time.Now().UTC(), len(corpus), terms, weights), nil
}

func newModel(version string, trainedAt time.Time, corpusSize int, terms []string, weights []float64) *Model {
	index := make(map[string]int, len(terms))
	for i, term := range terms {
		index[term] = i
	}
	return &Model{
		version:    version,
		trainedAt:  trainedAt,
		corpusSize: corpusSize,
		terms:      terms,
		index:      index,
		weights:    weights,
	}
}

// Version returns the unique id assigned at training time.
func (m *Model) Version() string { return m.version }

// TrainedAt returns when the model was trained (UTC).
func (m *Model) TrainedAt() time.Time { return m.trainedAt }

// CorpusSize returns the number of skill sets the model was trained on.
func (m *Model) CorpusSize() int { return m.corpusSize }

// Size returns the vocabulary size, which is also the vector dimension.
func (m *Model) Size() int { return len(m.terms) }

// Terms returns a copy of the vocabulary in dimension order.
func (m *Model) Terms() []string {
	out := make([]string, len(m.terms))
	copy(out, m.terms)
	return out
}

// Weight returns the trained weight of term.
func (m *Model) Weight(term string) (float64, bool) {
	i, ok := m.index[term]
	if !ok {
		return 0, false
	}
	return m.weights[i], true
}

// Index returns the vector dimension of term.
func (m *Model) Index(term string) (int, bool) {
	i, ok := m.index[term]
	return i, ok
}

// Vectorize projects a skill set onto the vocabulary. Each known term sets
// its dimension to the term weight; unknown terms are ignored, so a set with
// no known terms yields the zero vector.
func (m *Model) Vectorize(set skills.Set) []float64 {
	vec := make([]float64, len(m.terms))
	set.Each(func(term string) {
		if i, ok := m.index[term]; ok {
			vec[i] = m.weights[i]
		}
	})
	return vec
}

// Coverage returns how many terms of set are known to the model.
func (m *Model) Coverage(set skills.Set) int {
	known := 0
	set.Each(func(term string) {
		if _, ok := m.index[term]; ok {
			known++
		}
	})
	return known
}
