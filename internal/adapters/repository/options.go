package repository

import (
	"github.com/okian/skillmatch/pkg/logger"
)

// Option applies a configuration option to the Postgres source.
type Option func(*Postgres)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Postgres) {
		if l != nil {
			p.logger = l
		}
	}
}
