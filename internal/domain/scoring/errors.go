package scoring

import "errors"

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	ErrInvalidWeightConfig = errors.New("invalid weight config")
	ErrInvalidScale        = errors.New("invalid scoring scale")
	ErrNoModel             = errors.New("no vocabulary model")
)
