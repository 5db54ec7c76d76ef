// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/skillmatch/internal/domain/ranking"
	"github.com/okian/skillmatch/internal/domain/retrain"
	"github.com/okian/skillmatch/internal/domain/vocab"
	"github.com/okian/skillmatch/pkg/logger"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Recommender serves ranked recommendations for a skill query.
type Recommender interface {
	Recommend(ctx context.Context, skills []string, topN int) (ranking.Result, error)
	RecommendDefault(ctx context.Context, skills []string) (ranking.Result, error)
}

// Retrainer rebuilds the model on demand.
type Retrainer interface {
	Retrain(ctx context.Context) (retrain.Summary, error)
}

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]any
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Recommender
	Retrainer
	StatsProvider

	// Model returns the active model or nil.
	Model() *vocab.Model
	// Ready reports whether recommendations can be served.
	Ready() bool
}

// Server wires HTTP routes for the business API.
type Server struct {
	homeHandler      *HomeHandler
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	recommendHandler *RecommendHandler
	retrainHandler   *RetrainHandler

	corsOrigins []string
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, log logger.Logger, opts ...Option) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		homeHandler:      NewHomeHandler(deps),
		healthHandler:    NewHealthHandler(deps),
		statsHandler:     NewStatsHandler(deps),
		recommendHandler: NewRecommendHandler(deps, log),
		retrainHandler:   NewRetrainHandler(deps, log),
		corsOrigins:      DefaultCORSOrigins,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux. Every route except /metrics
// answers CORS preflight requests.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	cors := CORSMiddleware(s.corsOrigins)
	route := func(path, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(path, MetricsMiddleware(cors(h), endpoint))
	}

	route("/health", "health", s.healthHandler.HandleHealth)
	route("/ready", "ready", s.healthHandler.HandleReady)
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	route("/stats", "stats", s.statsHandler.HandleStats)
	route("/recommend", "recommend", s.recommendHandler.HandleRecommend)
	route("/retrain", "retrain", s.retrainHandler.HandleRetrain)
	route("/", "home", s.homeHandler.HandleHome)
}

type errorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Success: false, Code: code, Message: msg})
}

// writeDomainError classifies err and writes the matching error payload.
func writeDomainError(w http.ResponseWriter, err error) int {
	status, code := classify(err)
	writeError(w, status, code, err)
	return status
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
	return false
}
