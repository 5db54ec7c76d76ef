package swagger

import (
	"context"
	"html/template"
	"net/http"
	"strings"
)

// DefaultRedocScript is the pinned ReDoc bundle loaded by the docs page.
// Deployments without outbound access point WithRedocScript at a self-hosted copy.
const DefaultRedocScript = "https://cdn.redoc.ly/redoc/v2.1.5/bundles/redoc.standalone.js"

// Option configures the docs routes.
type Option func(*docs)

type docs struct {
	RedocScript string
}

// WithRedocScript overrides where the docs page loads ReDoc from. Blank keeps the default.
func WithRedocScript(url string) Option {
	return func(d *docs) {
		if url = strings.TrimSpace(url); url != "" {
			d.RedocScript = url
		}
	}
}

// Register attaches the API docs routes to mux.
//
//	GET /api-docs      -> ReDoc HTML
//	GET /openapi.yaml  -> embedded OpenAPI document
func Register(_ context.Context, mux *http.ServeMux, opts ...Option) {
	if mux == nil {
		panic("mux is nil")
	}

	d := &docs{RedocScript: DefaultRedocScript}
	// Apply all options
	for _, opt := range opts {
		opt(d)
	}

	mux.HandleFunc("/api-docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = indexHTML.Execute(w, d)
	})

	mux.HandleFunc("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(OpenAPI)
	})
}

var indexHTML = template.Must(template.New("api-docs").Parse(`<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>Skillmatch API</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc id="redoc-container"></redoc>
    <script src="{{.RedocScript}}"></script>
    <script>Redoc.init('/openapi.yaml', { suppressWarnings: true }, document.getElementById('redoc-container'));</script>
  </body>
</html>`))
