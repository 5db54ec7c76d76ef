package api

import "strings"

// DefaultCORSOrigins allows any origin, for browser front-ends calling the
// API directly.
var DefaultCORSOrigins = []string{"*"}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithCORSOrigins sets the origins allowed to call the API from a browser.
// Blank entries are ignored; an empty list keeps the default.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		clean := make([]string, 0, len(origins))
		for _, o := range origins {
			if o = strings.TrimSpace(o); o != "" {
				clean = append(clean, o)
			}
		}
		if len(clean) > 0 {
			s.corsOrigins = clean
		}
	}
}
