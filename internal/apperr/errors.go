package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidMetadata = errors.New("invalid metadata")
	ErrInvalidSeries   = errors.New("invalid series")
)

// ErrNotReady is returned while no snapshot has been built yet.
var ErrNotReady = errors.New("not ready")
