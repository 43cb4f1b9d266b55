// Package publisher fans match updates out to external consumers.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/okian/ballbyball/internal/domain/views"
	"github.com/okian/ballbyball/pkg/metrics"
)

// DefaultStream is the stream key match updates are appended to.
const DefaultStream = "matches.updates"

// defaultMaxLen caps the stream length (approximate trimming).
const defaultMaxLen = 10_000

// Publisher announces a changed scorecard.
type Publisher interface {
	Publish(ctx context.Context, reason string, sc views.ScorecardView) error
}

// Option configures a StreamPublisher.
type Option func(*StreamPublisher)

// WithStream overrides the stream key.
func WithStream(stream string) Option {
	return func(p *StreamPublisher) {
		if stream != "" {
			p.stream = stream
		}
	}
}

// WithMaxLen caps the stream at roughly n entries; n <= 0 disables trimming.
func WithMaxLen(n int64) Option {
	return func(p *StreamPublisher) {
		p.maxLen = n
	}
}

// StreamPublisher appends match updates to a Redis stream.
type StreamPublisher struct {
	client redis.UniversalClient
	stream string
	maxLen int64
}

// NewStreamPublisher creates a new stream publisher.
func NewStreamPublisher(client redis.UniversalClient, opts ...Option) *StreamPublisher {
	p := &StreamPublisher{
		client: client,
		stream: DefaultStream,
		maxLen: defaultMaxLen,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Stream returns the stream key.
func (p *StreamPublisher) Stream() string { return p.stream }

// Publish appends the scorecard of a match to the stream.
func (p *StreamPublisher) Publish(ctx context.Context, reason string, sc views.ScorecardView) error {
	values, err := streamValues(reason, sc)
	if err != nil {
		metrics.RecordLivePublish("stream", "error")
		return err
	}

	args := &redis.XAddArgs{Stream: p.stream, Values: values}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		metrics.RecordLivePublish("stream", "error")
		return fmt.Errorf("publishing match update: %w", err)
	}
	metrics.RecordLivePublish("stream", "ok")
	return nil
}

func streamValues(reason string, sc views.ScorecardView) (map[string]interface{}, error) {
	data, err := json.Marshal(sc)
	if err != nil {
		return nil, fmt.Errorf("marshaling match update: %w", err)
	}
	return map[string]interface{}{
		"data":     string(data),
		"match_id": sc.MatchID,
		"reason":   reason,
		"ended":    sc.HasEnded,
	}, nil
}

// Nop discards every update.
type Nop struct{}

func (Nop) Publish(context.Context, string, views.ScorecardView) error { return nil }
