package scoring

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrInvalidEventKind reports an outcome code outside the recognised set.
	ErrInvalidEventKind = errors.New("invalid event kind")
	// ErrInvalidScope reports an aggregation scope that does not exist.
	ErrInvalidScope = errors.New("invalid aggregation scope")
	// ErrMissingCompletedInnings reports an average requested without a completed innings count.
	ErrMissingCompletedInnings = errors.New("completed innings count is required")
	// ErrInvalidCompletedInnings reports a completed innings count outside [0, innings].
	ErrInvalidCompletedInnings = errors.New("completed innings out of range")
)
