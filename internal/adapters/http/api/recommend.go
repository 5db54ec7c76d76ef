package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/skillmatch/internal/domain/ranking"
	"github.com/okian/skillmatch/internal/domain/types"
	"github.com/okian/skillmatch/pkg/logger"
)

// recommendRequest mirrors the OpenAPI schema for POST /recommend.
type recommendRequest struct {
	Skills []string `json:"skills"`
	TopN   *int     `json:"top_n,omitempty"`
}

func (req recommendRequest) validate() error {
	if req.Skills == nil {
		return errors.New("missing skills")
	}
	if req.TopN != nil && *req.TopN < 1 {
		return fmt.Errorf("%w: %d, must be at least 1", ranking.ErrInvalidTopN, *req.TopN)
	}
	return nil
}

// RecommendHandler handles recommendation requests.
type RecommendHandler struct {
	deps   Recommender
	logger logger.Logger
}

// NewRecommendHandler creates a new recommend handler.
func NewRecommendHandler(deps Recommender, log logger.Logger) *RecommendHandler {
	return &RecommendHandler{deps: deps, logger: log}
}

// HandleRecommend handles POST /recommend requests.
func (h *RecommendHandler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommend"
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req recommendRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		if !errors.Is(err, ranking.ErrInvalidTopN) {
			err = fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		writeDomainError(w, fmt.Errorf("%s: %w", op, err))
		return
	}

	var (
		res ranking.Result
		err error
	)
	if req.TopN == nil {
		res, err = h.deps.RecommendDefault(r.Context(), req.Skills)
	} else {
		res, err = h.deps.Recommend(r.Context(), req.Skills, *req.TopN)
	}
	if err != nil {
		if status := writeDomainError(w, fmt.Errorf("%s: %w", op, err)); status >= http.StatusInternalServerError {
			h.logger.Error(r.Context(), "recommend failed", logger.Error(err))
		}
		return
	}

	recs := make([]types.Recommendation, 0, res.Total())
	for _, c := range res.Candidates {
		recs = append(recs, types.FromCandidate(c))
	}
	resp := types.RecommendResponse{
		Success:         true,
		Total:           len(recs),
		Outcome:         string(res.Outcome),
		Recommendations: recs,
	}
	if res.Empty() {
		resp.Message = res.Reason
	}
	writeJSON(w, http.StatusOK, resp)
}
