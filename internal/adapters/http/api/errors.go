package api

import (
	"errors"
	"net/http"

	service "github.com/okian/skillmatch/internal/app"
	"github.com/okian/skillmatch/internal/domain/ranking"
	"github.com/okian/skillmatch/internal/domain/retrain"
	"github.com/okian/skillmatch/internal/domain/snapshot"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// Error codes carried in error payloads.
const (
	codeBadRequest        = "bad_request"
	codeInvalidTopN       = "invalid_top_n"
	codeSourceUnavailable = "source_unavailable"
	codeModelNotReady     = "model_not_ready"
	codeRetrainInProgress = "retrain_in_progress"
	codeRetrainFailed     = "retrain_failed"
	codeInternal          = "internal_error"
)

// classify maps domain errors to an HTTP status and error code. A failed
// retrain stays a 500 whatever its cause.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, codeBadRequest
	case errors.Is(err, ranking.ErrInvalidTopN):
		return http.StatusBadRequest, codeInvalidTopN
	case errors.Is(err, retrain.ErrRetrainInProgress):
		return http.StatusConflict, codeRetrainInProgress
	case errors.Is(err, retrain.ErrRetrainFailed):
		return http.StatusInternalServerError, codeRetrainFailed
	case errors.Is(err, snapshot.ErrSourceUnavailable):
		return http.StatusServiceUnavailable, codeSourceUnavailable
	case errors.Is(err, service.ErrModelNotReady), errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, codeModelNotReady
	default:
		return http.StatusInternalServerError, codeInternal
	}
}
