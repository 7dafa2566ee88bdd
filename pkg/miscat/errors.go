package miscat

import "errors"

// Sentinel errors returned by Fit and Judge. Match with errors.Is.
var (
	ErrUntrained      = errors.New("model is not trained")
	ErrLengthMismatch = errors.New("corpus and labels length mismatch")
	ErrUnknownLabel   = errors.New("unknown label")
)
