package vocab

import "errors"

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	ErrEmptyCorpus     = errors.New("empty corpus")
	ErrCorruptArtifact = errors.New("corrupt model artifact")
)
