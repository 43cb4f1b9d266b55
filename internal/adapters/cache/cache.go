// Package cache keeps computed scorecards close to the read path.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/ballbyball/internal/domain/views"
	"github.com/okian/ballbyball/pkg/metrics"
)

// Default TTLs.
const (
	LiveScorecardTTL  = 2 * time.Hour
	EndedScorecardTTL = 6 * time.Hour
)

// Scorecards stores the latest scorecard of each match.
type Scorecards interface {
	Get(ctx context.Context, matchID string) (views.ScorecardView, error)
	Put(ctx context.Context, sc views.ScorecardView) error
	Delete(ctx context.Context, matchID string) error
}

// RedisScorecards stores scorecards as JSON strings in Redis.
type RedisScorecards struct {
	client   redis.UniversalClient
	prefix   string
	liveTTL  time.Duration
	endedTTL time.Duration
}

// NewRedisScorecards creates a Redis backed scorecard cache.
func NewRedisScorecards(client redis.UniversalClient, opts ...Option) *RedisScorecards {
	c := &RedisScorecards{
		client:   client,
		prefix:   "ballbyball",
		liveTTL:  LiveScorecardTTL,
		endedTTL: EndedScorecardTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisScorecards) key(matchID string) string {
	return fmt.Sprintf("%s:match:%s:scorecard", c.prefix, matchID)
}

// ttlFor keeps finished matches longer since they no longer change.
func (c *RedisScorecards) ttlFor(sc views.ScorecardView) time.Duration {
	if sc.HasEnded {
		return c.endedTTL
	}
	return c.liveTTL
}

// Get returns the cached scorecard or ErrMiss.
func (c *RedisScorecards) Get(ctx context.Context, matchID string) (views.ScorecardView, error) {
	data, err := c.client.Get(ctx, c.key(matchID)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordScorecardCache("miss")
		return views.ScorecardView{}, ErrMiss
	}
	if err != nil {
		metrics.RecordScorecardCache("error")
		return views.ScorecardView{}, fmt.Errorf("reading scorecard: %w", err)
	}

	var sc views.ScorecardView
	if err := json.Unmarshal(data, &sc); err != nil {
		metrics.RecordScorecardCache("error")
		return views.ScorecardView{}, fmt.Errorf("unmarshaling scorecard: %w", err)
	}
	metrics.RecordScorecardCache("hit")
	return sc, nil
}

// Put stores sc under its match id.
func (c *RedisScorecards) Put(ctx context.Context, sc views.ScorecardView) error {
	data, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("marshaling scorecard: %w", err)
	}
	return c.client.Set(ctx, c.key(sc.MatchID), data, c.ttlFor(sc)).Err()
}

// Delete drops the cached scorecard of matchID.
func (c *RedisScorecards) Delete(ctx context.Context, matchID string) error {
	return c.client.Del(ctx, c.key(matchID)).Err()
}

// MemoryScorecards is an in-process Scorecards used when Redis is not configured.
type MemoryScorecards struct {
	mu    sync.RWMutex
	cards map[string]views.ScorecardView
}

// NewMemoryScorecards returns an empty MemoryScorecards.
func NewMemoryScorecards() *MemoryScorecards {
	return &MemoryScorecards{cards: make(map[string]views.ScorecardView)}
}

func (c *MemoryScorecards) Get(_ context.Context, matchID string) (views.ScorecardView, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sc, ok := c.cards[matchID]
	if !ok {
		metrics.RecordScorecardCache("miss")
		return views.ScorecardView{}, ErrMiss
	}
	metrics.RecordScorecardCache("hit")
	return sc, nil
}

func (c *MemoryScorecards) Put(_ context.Context, sc views.ScorecardView) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cards[sc.MatchID] = sc
	return nil
}

func (c *MemoryScorecards) Delete(_ context.Context, matchID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cards, matchID)
	return nil
}
