package config

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")

	// ErrInvalidAPIKeys is an ErrInvalidConfig for malformed api_keys.
	ErrInvalidAPIKeys = fmt.Errorf(`%w: api_keys must be "key:user,key:user"`, ErrInvalidConfig)

	// ErrInvalidMetricsLabels is an ErrInvalidConfig for malformed metrics_labels.
	ErrInvalidMetricsLabels = fmt.Errorf(`%w: metrics_labels must be "name:value,name:value"`, ErrInvalidConfig)
)
