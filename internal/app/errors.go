package service

import "errors"

// Sentinel errors returned by the Service.
var (
	// ErrModelNotReady is returned before any model was restored or trained.
	ErrModelNotReady = errors.New("model not ready")
	ErrNotStarted    = errors.New("service not started")
	ErrNoSource      = errors.New("no freelancer source configured")
)
