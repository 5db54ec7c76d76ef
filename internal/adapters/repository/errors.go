package repository

import "errors"

// Sentinel errors for freelancer sources.
var (
	ErrInvalidDataset = errors.New("invalid dataset")
	ErrNotConnected   = errors.New("database not connected")
)
