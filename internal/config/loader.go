package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "BALLBYBALL_"
	envConfig  = "BALLBYBALL_CONFIG"
	listSep    = ","
	apiKeysKey = "api_keys"
	labelsKey  = "metrics_labels"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if BALLBYBALL_CONFIG is set
//  3. env (prefix BALLBYBALL_)
//
// List values from env are comma separated; BALLBYBALL_API_KEYS takes
// "key:user,key:user" pairs and BALLBYBALL_METRICS_LABELS takes
// "name:value,name:value".
func Load(_ context.Context) (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrLoadConfig, path, err)
		}
	}

	// BALLBYBALL_QUEUE_SIZE -> queue_size; underscores are kept to match the koanf tags.
	envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(envPrefix))
		switch key {
		case "config":
			return "", nil
		case "cors_allowed_origins":
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	// Configured keys replace the development key instead of merging with it.
	// From env they arrive as a flat string and are expanded by hand.
	if k.Exists(apiKeysKey) {
		base.APIKeys = nil
	}
	if raw, ok := k.Get(apiKeysKey).(string); ok {
		keys, err := parsePairs(raw, ErrInvalidAPIKeys)
		if err != nil {
			return nil, err
		}
		k.Delete(apiKeysKey)
		base.APIKeys = keys
	}
	if raw, ok := k.Get(labelsKey).(string); ok {
		labels, err := parsePairs(raw, ErrInvalidMetricsLabels)
		if err != nil {
			return nil, err
		}
		k.Delete(labelsKey)
		base.MetricsLabels = labels
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: unmarshal: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the invariants the rest of the service relies on.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.RefreshQueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	case c.MaxOvers < 1:
		return fmt.Errorf("%w: max_overs must be positive", ErrInvalidConfig)
	case c.DefaultOvers < 1 || c.DefaultOvers > c.MaxOvers:
		return fmt.Errorf("%w: default_overs must be within [1, max_overs]", ErrInvalidConfig)
	case len(c.APIKeys) == 0:
		return fmt.Errorf("%w: at least one api key is required", ErrInvalidConfig)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, listSep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parsePairs reads "key:value,key:value", failing with errKind.
func parsePairs(raw string, errKind error) (map[string]string, error) {
	out := make(map[string]string)
	for _, pair := range splitList(raw) {
		key, value, ok := strings.Cut(pair, ":")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if !ok || key == "" || value == "" {
			return nil, fmt.Errorf("%w: %q", errKind, pair)
		}
		out[key] = value
	}
	return out, nil
}
