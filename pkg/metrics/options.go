package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Default metric name prefix.
const (
	DefaultNamespace = "skillmatch"
	DefaultSubsystem = "recommender"
)

// Option configures a Manager before its collectors are registered.
type Option func(*Manager)

// WithNamespace prefixes every metric name. Blank keeps the current value.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if ns := metricName(namespace); ns != "" {
			m.namespace = ns
		}
	}
}

// WithSubsystem sets the second name segment. Blank keeps the current value.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if sub := metricName(subsystem); sub != "" {
			m.subsystem = sub
		}
	}
}

// WithHistogramBuckets sets the latency buckets, in milliseconds.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = append([]float64(nil), buckets...)
		}
	}
}

// WithPrometheusRegistry registers collectors on r instead of the default registerer.
func WithPrometheusRegistry(r prometheus.Registerer) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// metricName lowercases s and maps separators Prometheus rejects to '_'.
func metricName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r == '-', r == '.', r == ' ':
			return '_'
		default:
			return -1
		}
	}, s)
}
