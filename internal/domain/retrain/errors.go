package retrain

import "errors"

// Sentinel errors returned by the Coordinator and model stores.
var (
	// ErrRetrainFailed wraps any failure that aborted a retrain. The active
	// model is left untouched when it is returned.
	ErrRetrainFailed = errors.New("retrain failed")
	// ErrRetrainInProgress is returned when another retrain already runs.
	ErrRetrainInProgress = errors.New("retrain already in progress")
	// ErrNoArtifact is returned by a ModelStore that holds no model yet.
	ErrNoArtifact = errors.New("no persisted model")
)
