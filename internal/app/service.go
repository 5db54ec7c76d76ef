// Package service wires the recommender components together and implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/ranking"
	"github.com/okian/skillmatch/internal/domain/retrain"
	"github.com/okian/skillmatch/internal/domain/scoring"
	"github.com/okian/skillmatch/internal/domain/skills"
	"github.com/okian/skillmatch/internal/domain/snapshot"
	"github.com/okian/skillmatch/internal/domain/vocab"
	"github.com/okian/skillmatch/pkg/logger"
	"github.com/okian/skillmatch/pkg/metrics"
)

// Retrain statuses as reported to metrics and stats.
const (
	statusSuccess  = "success"
	statusFailed   = "failed"
	statusRejected = "rejected"
)

// Service serves recommendations from the active model and retrains it on
// demand.
type Service struct {
	mu sync.RWMutex

	// Collaborators
	source      snapshot.Source
	store       retrain.ModelStore
	loader      *snapshot.Loader
	scorer      *scoring.Scorer
	registry    *retrain.Registry
	coordinator *retrain.Coordinator

	// Configuration
	weights        scoring.Weights
	maxRating      float64
	experienceCap  float64
	neutralRating  float64
	minSimilarity  float64
	defaultTopN    int
	maxTopN        int
	sourceTimeout  time.Duration
	retrainTimeout time.Duration
	retrainOnStart bool

	// State
	started          bool
	retrainSucceeded atomic.Int64
	retrainFailed    atomic.Int64
	retrainRejected  atomic.Int64

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		weights:        scoring.DefaultWeights(),
		maxRating:      scoring.DefaultMaxRating,
		experienceCap:  scoring.DefaultExperienceCap,
		neutralRating:  snapshot.DefaultNeutralRating,
		minSimilarity:  ranking.DefaultMinSimilarity,
		defaultTopN:    ranking.DefaultTopN,
		maxTopN:        100,
		sourceTimeout:  snapshot.DefaultFetchTimeout,
		retrainTimeout: retrain.DefaultTimeout,
		registry:       retrain.NewRegistry(),
		logger:         nil, // replaced on Start
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the scoring pipeline, restores the persisted model and, when
// enabled, trains a fresh one. Invalid scoring configuration fails here.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.source == nil {
		return ErrNoSource
	}

	scorer, err := scoring.NewScorer(
		scoring.WithWeights(s.weights),
		scoring.WithMaxRating(s.maxRating),
		scoring.WithExperienceCap(s.experienceCap),
	)
	if err != nil {
		return err
	}
	s.scorer = scorer
	s.loader = snapshot.NewLoader(s.source,
		snapshot.WithNeutralRating(s.neutralRating),
		snapshot.WithMaxRating(s.maxRating),
		snapshot.WithFetchTimeout(s.sourceTimeout),
	)

	copts := []retrain.Option{
		retrain.WithTimeout(s.retrainTimeout),
		retrain.WithLogger(s.logger.Named("retrain")),
	}
	if s.store != nil {
		copts = append(copts, retrain.WithStore(s.store))
	}
	s.coordinator = retrain.NewCoordinator(&meteredLoader{loader: s.loader}, s.registry, copts...)

	s.logger.Info(ctx, "starting recommendation service...",
		logger.Float64("weight_skills", s.weights.Skill),
		logger.Float64("weight_rating", s.weights.Rating),
		logger.Float64("weight_experience", s.weights.Experience),
		logger.Float64("min_similarity", s.minSimilarity),
		logger.Bool("retrain_on_start", s.retrainOnStart),
		logger.Bool("persist_model", s.store != nil),
	)

	if m, err := s.coordinator.Restore(ctx); err == nil {
		metrics.UpdateModel(m.Size(), m.CorpusSize(), m.TrainedAt())
	} else if !errors.Is(err, retrain.ErrNoArtifact) {
		s.logger.Warn(ctx, "could not restore persisted model", logger.Error(err))
	}

	s.started = true

	if s.retrainOnStart {
		if _, err := s.retrain(ctx); err != nil {
			s.logger.Warn(ctx, "initial retrain failed", logger.Error(err))
		}
	}

	if m := s.registry.Current(); m != nil {
		s.logger.Info(ctx, "recommendation service started",
			logger.String("model_version", m.Version()),
			logger.Int("vocabulary", m.Size()),
		)
	} else {
		s.logger.Warn(ctx, "recommendation service started without a model; recommend stays unavailable until a retrain succeeds")
	}
	return nil
}

// Stop marks the service stopped. Collaborators are owned by the caller.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "recommendation service stopped")
}

func (s *Service) pipeline() (*snapshot.Loader, *scoring.Scorer, *retrain.Coordinator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, nil, ErrNotStarted
	}
	return s.loader, s.scorer, s.coordinator, nil
}

// Recommend scores a fresh snapshot against the active model and returns at
// most topN candidates. topN must be within [1, max top_n].
func (s *Service) Recommend(ctx context.Context, rawSkills []string, topN int) (ranking.Result, error) {
	loader, scorer, _, err := s.pipeline()
	if err != nil {
		return ranking.Result{}, err
	}
	if topN < 1 || topN > s.maxTopN {
		return ranking.Result{}, fmt.Errorf("%w: %d, must be between 1 and %d", ranking.ErrInvalidTopN, topN, s.maxTopN)
	}

	// One model for the whole pass, even if a retrain publishes meanwhile.
	m := s.registry.Current()
	if m == nil {
		return ranking.Result{}, ErrModelNotReady
	}

	records, err := (&meteredLoader{loader: loader}).Load(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("snapshot", "source_unavailable")
		return ranking.Result{}, err
	}

	start := time.Now()
	query := skills.Normalize(rawSkills)
	scored, err := scorer.Score(query, m, records)
	if err != nil {
		return ranking.Result{}, err
	}
	res, err := ranking.Rank(scored, s.minSimilarity, topN)
	if err != nil {
		return ranking.Result{}, err
	}
	res.Reason = s.explain(res, query, m)

	metrics.RecordRecommendation(string(res.Outcome), res.Considered, res.Considered-res.Qualified, time.Since(start))
	s.logger.Debug(ctx, "recommendation served",
		logger.String("query", query.String()),
		logger.String("outcome", string(res.Outcome)),
		logger.Int("returned", res.Total()),
		logger.Int("considered", res.Considered),
		logger.String("model_version", m.Version()),
	)
	return res, nil
}

// RecommendDefault is Recommend with the configured default top_n.
func (s *Service) RecommendDefault(ctx context.Context, rawSkills []string) (ranking.Result, error) {
	return s.Recommend(ctx, rawSkills, s.defaultTopN)
}

// meteredLoader records fetch latency and failures of every snapshot load.
type meteredLoader struct {
	loader *snapshot.Loader
}

func (l *meteredLoader) Load(ctx context.Context) ([]model.FreelancerRecord, error) {
	start := time.Now()
	records, err := l.loader.Load(ctx)
	metrics.RecordSourceFetch(time.Since(start), err)
	return records, err
}

func (s *Service) explain(res ranking.Result, query skills.Set, m *vocab.Model) string {
	switch res.Outcome {
	case ranking.OutcomeNoCandidates:
		return "No freelancers are available right now."
	case ranking.OutcomeBelowThreshold:
		if query.IsEmpty() {
			return "No skills were given to match against."
		}
		if m.Coverage(query) == 0 {
			return fmt.Sprintf("No freelancer lists any of the skills: %s.", query.String())
		}
		return fmt.Sprintf("No freelancers match the skills: %s (minimum skill match %.0f%%).",
			query.String(), s.minSimilarity*100)
	default:
		return res.Reason
	}
}

// Retrain trains and publishes a new model. A concurrent call fails with
// retrain.ErrRetrainInProgress.
func (s *Service) Retrain(ctx context.Context) (retrain.Summary, error) {
	if _, _, _, err := s.pipeline(); err != nil {
		return retrain.Summary{}, err
	}
	return s.retrain(ctx)
}

func (s *Service) retrain(ctx context.Context) (retrain.Summary, error) {
	start := time.Now()
	sum, err := s.coordinator.Retrain(ctx)
	switch {
	case err == nil:
		s.retrainSucceeded.Add(1)
		metrics.RecordRetrain(statusSuccess, time.Since(start))
		metrics.UpdateModel(sum.VocabularySize, sum.FreelancerCount, sum.TrainedAt)
	case errors.Is(err, retrain.ErrRetrainInProgress):
		s.retrainRejected.Add(1)
		metrics.RecordRetrain(statusRejected, time.Since(start))
	default:
		s.retrainFailed.Add(1)
		metrics.RecordRetrain(statusFailed, time.Since(start))
		metrics.RecordErrorByComponent("retrain", errorType(err))
	}
	return sum, err
}

func errorType(err error) string {
	switch {
	case errors.Is(err, snapshot.ErrSourceUnavailable):
		return "source_unavailable"
	case errors.Is(err, vocab.ErrEmptyCorpus):
		return "empty_corpus"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "other"
	}
}

// Model returns the active model or nil.
func (s *Service) Model() *vocab.Model {
	return s.registry.Current()
}

// Ready reports whether recommendations can be served.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started && s.registry.Current() != nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":            s.started,
		"min_similarity":     s.minSimilarity,
		"default_top_n":      s.defaultTopN,
		"max_top_n":          s.maxTopN,
		"retrains_succeeded": s.retrainSucceeded.Load(),
		"retrains_failed":    s.retrainFailed.Load(),
		"retrains_rejected":  s.retrainRejected.Load(),
		"weights": map[string]float64{
			"skills":     s.weights.Skill,
			"rating":     s.weights.Rating,
			"experience": s.weights.Experience,
		},
	}

	if m := s.registry.Current(); m != nil {
		stats["model_version"] = m.Version()
		stats["vocabulary_size"] = m.Size()
		stats["corpus_size"] = m.CorpusSize()
		stats["trained_at"] = m.TrainedAt().Format(time.RFC3339)
	}
	if s.coordinator != nil {
		stats["retrain_running"] = s.coordinator.Running()
		if last, ok := s.coordinator.Last(); ok {
			stats["last_retrain_ms"] = last.Duration.Milliseconds()
			stats["last_retrain_skipped"] = last.Skipped
		}
	}
	return stats
}
