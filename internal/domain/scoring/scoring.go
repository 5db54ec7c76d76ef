// Package scoring computes composite match scores for freelancers.
package scoring

import (
	"fmt"
	"math"

	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/skills"
	"github.com/okian/skillmatch/internal/domain/vocab"
)

// Default scoring configuration constants.
const (
	DefaultSkillWeight      = 0.7
	DefaultRatingWeight     = 0.2
	DefaultExperienceWeight = 0.1
	DefaultMaxRating        = 5.0
	DefaultExperienceCap    = 10.0

	// WeightSumTolerance bounds how far the three weights may drift from 1.
	WeightSumTolerance = 1e-9
)

// Weights blends the three normalised sub-scores.
type Weights struct {
	Skill      float64
	Rating     float64
	Experience float64
}

// DefaultWeights returns 0.7 skill, 0.2 rating, 0.1 experience.
func DefaultWeights() Weights {
	return Weights{
		Skill:      DefaultSkillWeight,
		Rating:     DefaultRatingWeight,
		Experience: DefaultExperienceWeight,
	}
}

// Sum returns the total of the three weights.
func (w Weights) Sum() float64 { return w.Skill + w.Rating + w.Experience }

// Validate fails with ErrInvalidWeightConfig when a weight is negative or
// not finite, or when the weights do not sum to 1 within WeightSumTolerance.
func (w Weights) Validate() error {
	named := []struct {
		name  string
		value float64
	}{{"skill", w.Skill}, {"rating", w.Rating}, {"experience", w.Experience}}
	for _, n := range named {
		if n.value < 0 || math.IsNaN(n.value) || math.IsInf(n.value, 0) {
			return fmt.Errorf("%w: %s weight %v", ErrInvalidWeightConfig, n.name, n.value)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1) > WeightSumTolerance {
		return fmt.Errorf("%w: weights sum to %v, want 1", ErrInvalidWeightConfig, sum)
	}
	return nil
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights sets the composite weights. Validation happens in NewScorer.
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		s.weights = w
	}
}

// WithMaxRating sets the rating that maps to a rating sub-score of 1.
func WithMaxRating(maxRating float64) Option {
	return func(s *Scorer) {
		s.maxRating = maxRating
	}
}

// WithExperienceCap sets the experience at which the sub-score saturates.
func WithExperienceCap(experienceCap float64) Option {
	return func(s *Scorer) {
		s.experienceCap = experienceCap
	}
}

// Scorer turns freelancer records into scored candidates. It holds only
// configuration and is safe for concurrent use.
type Scorer struct {
	weights       Weights
	maxRating     float64
	experienceCap float64
}

// NewScorer creates a Scorer and fails fast on an invalid configuration.
func NewScorer(opts ...Option) (*Scorer, error) {
	s := &Scorer{
		weights:       DefaultWeights(),
		maxRating:     DefaultMaxRating,
		experienceCap: DefaultExperienceCap,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if err := s.weights.Validate(); err != nil {
		return nil, err
	}
	if !(s.maxRating > 0) || math.IsInf(s.maxRating, 0) {
		return nil, fmt.Errorf("%w: max rating %v", ErrInvalidScale, s.maxRating)
	}
	if !(s.experienceCap > 0) || math.IsInf(s.experienceCap, 0) {
		return nil, fmt.Errorf("%w: experience cap %v", ErrInvalidScale, s.experienceCap)
	}
	return s, nil
}

// Weights returns the configured weights.
func (s *Scorer) Weights() Weights { return s.weights }

// Score vectorises query and every candidate with the same model and returns
// one ScoredCandidate per input record, in input order.
func (s *Scorer) Score(query skills.Set, m *vocab.Model, candidates []model.FreelancerRecord) ([]model.ScoredCandidate, error) {
	if m == nil {
		return nil, ErrNoModel
	}

	q := m.Vectorize(query)
	qNorm := norm(q)

	out := make([]model.ScoredCandidate, 0, len(candidates))
	for _, rec := range candidates {
		sim := 0.0
		if qNorm > 0 {
			v := m.Vectorize(rec.Skills)
			if vNorm := norm(v); vNorm > 0 {
				sim = clamp01(dot(q, v) / (qNorm * vNorm))
			}
		}

		composite := s.weights.Skill*sim +
			s.weights.Rating*s.ratingScore(rec.Rating) +
			s.weights.Experience*s.experienceScore(rec.Experience)

		out = append(out, model.ScoredCandidate{
			Record:       rec,
			Similarity:   sim,
			Composite:    clamp01(composite),
			MatchPercent: MatchPercent(sim),
		})
	}
	return out, nil
}

func (s *Scorer) ratingScore(rating float64) float64 {
	return clamp01(rating / s.maxRating)
}

func (s *Scorer) experienceScore(years int) float64 {
	return clamp01(float64(years) / s.experienceCap)
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0 when
// either vector has zero length.
func CosineSimilarity(a, b []float64) float64 {
	na, nb := norm(a), norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return dot(a, b) / (na * nb)
}

// MatchPercent scales a similarity to a 0-100 display value with one decimal.
func MatchPercent(similarity float64) float64 {
	return math.Round(similarity*1000) / 10
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func norm(v []float64) float64 {
	return math.Sqrt(dot(v, v))
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(0, math.Min(1, x))
}
