// Package config defines service configuration and its layered loading.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers a YAML file and BALLBYBALL_* env vars on top of New.
// - Validation failures wrap ErrInvalidConfig; source failures wrap ErrLoadConfig.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// RefreshQueueSize bounds the scorecard refresh queue.
	RefreshQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of refresh workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the remembered ball event ids used for idempotency.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /api/leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// DatabaseURL selects the Postgres store; empty keeps everything in memory.
	DatabaseURL string `koanf:"database_url"`

	// RedisAddr enables the scorecard cache and the update stream when set.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// ScorecardTTLSeconds is the cache lifetime of a live match scorecard.
	ScorecardTTLSeconds int `koanf:"scorecard_ttl_seconds"`

	// CORSAllowedOrigins lists browser origins allowed to call the API.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// APIKeys maps an X-API-Key value to the user id that owns the data.
	APIKeys map[string]string `koanf:"api_keys"`

	// MetricsLabels are constant labels, such as env or region, added to every metric.
	MetricsLabels map[string]string `koanf:"metrics_labels"`

	// DefaultOvers is used when a match is created without an overs limit.
	DefaultOvers int `koanf:"default_overs"`

	// MaxOvers caps the overs limit of a match.
	MaxOvers int `koanf:"max_overs"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		RefreshQueueSize:    10_000,
		WorkerCount:         runtime.NumCPU(),
		DedupeSize:          100_000,
		MaxLeaderboardLimit: 100,
		ScorecardTTLSeconds: 7200,
		CORSAllowedOrigins:  []string{"http://localhost:3000"},
		APIKeys: map[string]string{
			"dev-key": "dev-user",
		},
		DefaultOvers: 20,
		MaxOvers:     50,
	}
}
