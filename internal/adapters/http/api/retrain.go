package api

import (
	"fmt"
	"net/http"

	"github.com/okian/skillmatch/internal/domain/types"
	"github.com/okian/skillmatch/pkg/logger"
)

// RetrainHandler triggers a model retrain.
type RetrainHandler struct {
	deps   Retrainer
	logger logger.Logger
}

// NewRetrainHandler creates a new retrain handler.
func NewRetrainHandler(deps Retrainer, log logger.Logger) *RetrainHandler {
	return &RetrainHandler{deps: deps, logger: log}
}

// HandleRetrain handles POST /retrain requests. The call blocks until the
// retrain finishes.
func (h *RetrainHandler) HandleRetrain(w http.ResponseWriter, r *http.Request) {
	const op = "api.retrain"
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	sum, err := h.deps.Retrain(r.Context())
	if err != nil {
		status := writeDomainError(w, fmt.Errorf("%s: %w", op, err))
		h.logger.Warn(r.Context(), "retrain request failed",
			logger.Int("status", status),
			logger.Error(err),
		)
		return
	}

	writeJSON(w, http.StatusOK, types.RetrainResponse{
		Success:         true,
		FreelancerCount: sum.FreelancerCount,
		VocabularySize:  sum.VocabularySize,
		ModelVersion:    sum.Version,
		TrainedAt:       sum.TrainedAt,
	})
}
