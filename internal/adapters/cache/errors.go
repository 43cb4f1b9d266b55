package cache

import "errors"

// ErrMiss is returned when no scorecard is cached for a match.
var ErrMiss = errors.New("scorecard not cached")
