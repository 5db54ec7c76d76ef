// Package config defines service configuration and how it is loaded.
package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/okian/skillmatch/internal/domain/ranking"
	"github.com/okian/skillmatch/internal/domain/scoring"
	"github.com/okian/skillmatch/pkg/metrics"
)

// Supported data sources and model stores.
const (
	SourcePostgres = "postgres"
	SourceFile     = "file"

	StoreFile  = "file"
	StoreRedis = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`
	// CORSOrigins is a comma-separated list of allowed origins; "*" allows any.
	CORSOrigins string `koanf:"cors_origins"`
	// RedocScriptURL is where the API docs page loads ReDoc from; empty uses
	// the pinned CDN bundle.
	RedocScriptURL string `koanf:"redoc_script_url"`

	// Prometheus metric name prefix: <namespace>_<subsystem>_<name>.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// Source selects where freelancers and reviews come from.
	Source        string `koanf:"source"`
	DatabaseURL   string `koanf:"database_url"`
	RunMigrations bool   `koanf:"run_migrations"`
	DatasetPath   string `koanf:"dataset_path"`
	// SourceTimeoutMS bounds one snapshot fetch.
	SourceTimeoutMS int `koanf:"source_timeout_ms"`

	// ModelStore selects where the trained model is persisted.
	ModelStore    string `koanf:"model_store"`
	ModelPath     string `koanf:"model_path"`
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisKey      string `koanf:"redis_key"`

	// Composite score weights; they must sum to 1.
	WeightSkills     float64 `koanf:"weight_skills"`
	WeightRating     float64 `koanf:"weight_rating"`
	WeightExperience float64 `koanf:"weight_experience"`

	MaxRating     float64 `koanf:"max_rating"`
	ExperienceCap float64 `koanf:"experience_cap"`
	NeutralRating float64 `koanf:"neutral_rating"`
	MinSimilarity float64 `koanf:"min_similarity"`

	DefaultTopN int `koanf:"default_top_n"`
	MaxTopN     int `koanf:"max_top_n"`

	RetrainTimeoutMS int  `koanf:"retrain_timeout_ms"`
	RetrainOnStart   bool `koanf:"retrain_on_start"`
}

// New returns a Config holding the defaults.
func New() *Config {
	w := scoring.DefaultWeights()
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":8000",
		CORSOrigins:      "*",
		MetricsNamespace: metrics.DefaultNamespace,
		MetricsSubsystem: metrics.DefaultSubsystem,
		Source:           SourceFile,
		RunMigrations:    false,
		DatasetPath:      "data/freelancers.yaml",
		SourceTimeoutMS:  10_000,
		ModelStore:       StoreFile,
		ModelPath:        "data/model.json",
		RedisAddr:        "localhost:6379",
		RedisKey:         "skillmatch:model",
		WeightSkills:     w.Skill,
		WeightRating:     w.Rating,
		WeightExperience: w.Experience,
		MaxRating:        scoring.DefaultMaxRating,
		ExperienceCap:    scoring.DefaultExperienceCap,
		NeutralRating:    0,
		MinSimilarity:    ranking.DefaultMinSimilarity,
		DefaultTopN:      ranking.DefaultTopN,
		MaxTopN:          100,
		RetrainTimeoutMS: 120_000,
		RetrainOnStart:   true,
	}
}

// Weights returns the configured composite weights.
func (c *Config) Weights() scoring.Weights {
	return scoring.Weights{
		Skill:      c.WeightSkills,
		Rating:     c.WeightRating,
		Experience: c.WeightExperience,
	}
}

// Origins splits CORSOrigins into trimmed, non-empty entries.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// SourceTimeout returns the snapshot fetch bound.
func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.SourceTimeoutMS) * time.Millisecond
}

// RetrainTimeout returns the retrain bound.
func (c *Config) RetrainTimeout() time.Duration {
	return time.Duration(c.RetrainTimeoutMS) * time.Millisecond
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	if c.Addr == "" {
		return invalid("addr must not be empty")
	}
	if len(c.Origins()) == 0 {
		return invalid("cors_origins must name at least one origin or \"*\"")
	}
	if c.MetricsNamespace == "" {
		return invalid("metrics_namespace must not be empty")
	}
	switch c.Source {
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return invalid("database_url is required for source %q", c.Source)
		}
	case SourceFile:
		if c.DatasetPath == "" {
			return invalid("dataset_path is required for source %q", c.Source)
		}
	default:
		return invalid("unknown source %q", c.Source)
	}
	switch c.ModelStore {
	case StoreFile:
		if c.ModelPath == "" {
			return invalid("model_path is required for model_store %q", c.ModelStore)
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			return invalid("redis_addr is required for model_store %q", c.ModelStore)
		}
	default:
		return invalid("unknown model_store %q", c.ModelStore)
	}

	if err := c.Weights().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.MaxRating <= 0 || c.ExperienceCap <= 0 {
		return invalid("max_rating and experience_cap must be positive")
	}
	if c.NeutralRating < 0 || c.NeutralRating > c.MaxRating {
		return invalid("neutral_rating %v outside [0, %v]", c.NeutralRating, c.MaxRating)
	}
	if math.IsNaN(c.MinSimilarity) || c.MinSimilarity < 0 || c.MinSimilarity > 1 {
		return invalid("min_similarity %v outside [0, 1]", c.MinSimilarity)
	}
	if c.DefaultTopN < 1 || c.MaxTopN < c.DefaultTopN {
		return invalid("need 1 <= default_top_n (%d) <= max_top_n (%d)", c.DefaultTopN, c.MaxTopN)
	}
	if c.SourceTimeoutMS <= 0 || c.RetrainTimeoutMS <= 0 {
		return invalid("timeouts must be positive")
	}
	return nil
}
