package service

import (
	"time"

	"github.com/okian/skillmatch/internal/domain/retrain"
	"github.com/okian/skillmatch/internal/domain/scoring"
	"github.com/okian/skillmatch/internal/domain/snapshot"
	"github.com/okian/skillmatch/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSource sets where freelancers and reviews are read from.
func WithSource(src snapshot.Source) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithModelStore persists trained models and restores them on start.
func WithModelStore(store retrain.ModelStore) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithWeights sets the composite score weights. They are validated on Start.
func WithWeights(w scoring.Weights) Option {
	return func(s *Service) {
		s.weights = w
	}
}

// WithMaxRating sets the top of the rating scale.
func WithMaxRating(maxRating float64) Option {
	return func(s *Service) {
		s.maxRating = maxRating
	}
}

// WithExperienceCap sets the years at which experience saturates.
func WithExperienceCap(years float64) Option {
	return func(s *Service) {
		s.experienceCap = years
	}
}

// WithNeutralRating sets the rating of freelancers without reviews.
func WithNeutralRating(rating float64) Option {
	return func(s *Service) {
		s.neutralRating = rating
	}
}

// WithMinSimilarity sets the similarity below which candidates are dropped.
func WithMinSimilarity(threshold float64) Option {
	return func(s *Service) {
		if threshold >= 0 && threshold <= 1 {
			s.minSimilarity = threshold
		}
	}
}

// WithTopN sets the default and maximum number of recommendations.
func WithTopN(defaultN, maxN int) Option {
	return func(s *Service) {
		if defaultN > 0 && maxN >= defaultN {
			s.defaultTopN = defaultN
			s.maxTopN = maxN
		}
	}
}

// WithSourceTimeout bounds one snapshot fetch.
func WithSourceTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.sourceTimeout = timeout
		}
	}
}

// WithRetrainTimeout bounds one retrain.
func WithRetrainTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.retrainTimeout = timeout
		}
	}
}

// WithRetrainOnStart trains a fresh model during Start.
func WithRetrainOnStart(enabled bool) Option {
	return func(s *Service) {
		s.retrainOnStart = enabled
	}
}
