package cache

import "time"

// Option configures a RedisScorecards.
type Option func(*RedisScorecards)

// WithLiveTTL sets how long the scorecard of a match in progress is kept.
func WithLiveTTL(ttl time.Duration) Option {
	return func(c *RedisScorecards) {
		if ttl > 0 {
			c.liveTTL = ttl
		}
	}
}

// WithEndedTTL sets how long the scorecard of a finished match is kept.
func WithEndedTTL(ttl time.Duration) Option {
	return func(c *RedisScorecards) {
		if ttl > 0 {
			c.endedTTL = ttl
		}
	}
}

// WithKeyPrefix namespaces every key written by the cache.
func WithKeyPrefix(prefix string) Option {
	return func(c *RedisScorecards) {
		c.prefix = prefix
	}
}
