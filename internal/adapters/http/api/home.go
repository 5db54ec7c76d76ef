package api

import (
	"net/http"

	"github.com/okian/skillmatch/internal/domain/vocab"
)

type modelProvider interface {
	Model() *vocab.Model
}

type homeResponse struct {
	Service      string            `json:"service"`
	Status       string            `json:"status"`
	ModelVersion string            `json:"model_version,omitempty"`
	Vocabulary   int               `json:"vocabulary_size"`
	Endpoints    map[string]string `json:"endpoints"`
}

// HomeHandler describes the service at the root path.
type HomeHandler struct {
	deps modelProvider
}

// NewHomeHandler creates a new home handler.
func NewHomeHandler(deps modelProvider) *HomeHandler {
	return &HomeHandler{deps: deps}
}

// HandleHome handles GET /. Any other unmatched path is a 404.
func (h *HomeHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	resp := homeResponse{
		Service: "skillmatch freelancer recommender",
		Status:  "running",
		Endpoints: map[string]string{
			"recommend": "POST /recommend",
			"retrain":   "POST /retrain",
			"health":    "GET /health",
			"ready":     "GET /ready",
			"stats":     "GET /stats",
			"metrics":   "GET /metrics",
			"docs":      "GET /api-docs",
		},
	}
	if m := h.deps.Model(); m != nil {
		resp.ModelVersion = m.Version()
		resp.Vocabulary = m.Size()
	}
	writeJSON(w, http.StatusOK, resp)
}
