// Package snapshot loads live freelancer records for one scoring pass.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/skills"
)

// Default loader configuration constants.
const (
	// DefaultNeutralRating is used for freelancers without any review.
	DefaultNeutralRating = 0.0
	DefaultMaxRating     = 5.0
	DefaultFetchTimeout  = 10 * time.Second
)

// ErrSourceUnavailable is returned when the data source cannot be reached or
// does not answer within the fetch timeout.
var ErrSourceUnavailable = errors.New("freelancer source unavailable")

// RawFreelancer is a base record as the source stores it. Skills may hold
// delimited strings and unnormalised case.
type RawFreelancer struct {
	ID         string
	Name       string
	Skills     []string
	Experience int
}

// RatingAggregate is the review summary of one freelancer.
type RatingAggregate struct {
	FreelancerID string
	Average      float64
	Count        int
}

// Source is the external collaborator holding freelancers and reviews.
type Source interface {
	// FetchFreelancers returns every freelancer base record.
	FetchFreelancers(ctx context.Context) ([]RawFreelancer, error)
	// FetchRatings returns average review stars grouped by freelancer id.
	FetchRatings(ctx context.Context) ([]RatingAggregate, error)
}

// ConsistentSource is a Source that can return freelancers and ratings from
// one read, so both halves of a snapshot see the same data. The Loader
// prefers it when available.
type ConsistentSource interface {
	Source
	FetchSnapshot(ctx context.Context) ([]RawFreelancer, []RatingAggregate, error)
}

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithNeutralRating sets the rating given to freelancers without reviews.
func WithNeutralRating(rating float64) Option {
	return func(l *Loader) {
		if rating >= 0 {
			l.neutralRating = rating
		}
	}
}

// WithMaxRating sets the upper bound ratings are clamped to.
func WithMaxRating(maxRating float64) Option {
	return func(l *Loader) {
		if maxRating > 0 {
			l.maxRating = maxRating
		}
	}
}

// WithFetchTimeout bounds the whole fetch from the source.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(l *Loader) {
		if timeout > 0 {
			l.timeout = timeout
		}
	}
}

// Loader joins freelancers with their ratings into FreelancerRecords.
type Loader struct {
	source        Source
	neutralRating float64
	maxRating     float64
	timeout       time.Duration
}

// NewLoader creates a Loader reading from source.
func NewLoader(source Source, opts ...Option) *Loader {
	l := &Loader{
		source:        source,
		neutralRating: DefaultNeutralRating,
		maxRating:     DefaultMaxRating,
		timeout:       DefaultFetchTimeout,
	}

	// Apply all options
	for _, opt := range opts {
		opt(l)
	}

	if l.neutralRating > l.maxRating {
		l.neutralRating = l.maxRating
	}
	return l
}

// Load fetches a fresh snapshot. Either every record is returned or the call
// fails with ErrSourceUnavailable; a reachable, empty source yields an empty
// slice and no error.
func (l *Loader) Load(ctx context.Context) ([]model.FreelancerRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	raw, ratings, err := l.fetch(ctx)
	if err != nil {
		return nil, err
	}
	// A source that ignores ctx must not outlive the bound either.
	if err := ctx.Err(); err != nil {
		return nil, unavailable(ctx, "fetch", err)
	}

	byID := make(map[string]RatingAggregate, len(ratings))
	for _, r := range ratings {
		byID[r.FreelancerID] = r
	}

	records := make([]model.FreelancerRecord, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, f := range raw {
		if f.ID == "" {
			continue
		}
		if _, dup := seen[f.ID]; dup {
			continue
		}
		seen[f.ID] = struct{}{}

		rec := model.FreelancerRecord{
			ID:         f.ID,
			Name:       f.Name,
			Skills:     skills.Normalize(f.Skills),
			Experience: max(f.Experience, 0),
			Rating:     l.neutralRating,
		}
		if agg, ok := byID[f.ID]; ok && agg.Count > 0 {
			rec.Rating = l.clampRating(agg.Average)
			rec.CompletedProjects = agg.Count
		}
		records = append(records, rec)
	}
	return records, nil
}

func (l *Loader) fetch(ctx context.Context) ([]RawFreelancer, []RatingAggregate, error) {
	if cs, ok := l.source.(ConsistentSource); ok {
		raw, ratings, err := cs.FetchSnapshot(ctx)
		if err != nil {
			return nil, nil, unavailable(ctx, "fetch snapshot", err)
		}
		return raw, ratings, nil
	}

	raw, err := l.source.FetchFreelancers(ctx)
	if err != nil {
		return nil, nil, unavailable(ctx, "fetch freelancers", err)
	}
	ratings, err := l.source.FetchRatings(ctx)
	if err != nil {
		return nil, nil, unavailable(ctx, "fetch ratings", err)
	}
	return raw, ratings, nil
}

func (l *Loader) clampRating(r float64) float64 {
	if math.IsNaN(r) {
		return l.neutralRating
	}
	return math.Max(0, math.Min(l.maxRating, r))
}

func unavailable(ctx context.Context, step string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		err = fmt.Errorf("%w: %w", ctxErr, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, step, err)
}
