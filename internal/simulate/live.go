package simulate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/ballbyball/internal/adapters/http/live"
	"github.com/okian/ballbyball/internal/domain/views"
)

// watcher follows the live feed of one match.
type watcher struct {
	conn *websocket.Conn
	done chan struct{}

	mu    sync.Mutex
	last  views.ScorecardView
	count int
}

type liveMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// dialLive subscribes to the live scorecards of matchID.
func dialLive(ctx context.Context, cfg *Config, matchID string) (*watcher, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	u.Scheme = strings.Replace(u.Scheme, "http", "ws", 1)
	u.Path = "/api/matches/" + matchID + "/live"
	u.RawQuery = url.Values{"api_key": {cfg.APIKey}}.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial live: %w", err)
	}
	w := &watcher{conn: conn, done: make(chan struct{})}
	go w.read()
	return w, nil
}

func (w *watcher) read() {
	defer close(w.done)
	for {
		var msg liveMessage
		if err := w.conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type != live.TypeScorecard {
			continue
		}
		var sc views.ScorecardView
		if err := json.Unmarshal(msg.Payload, &sc); err != nil {
			continue
		}
		w.mu.Lock()
		w.last = sc
		w.count++
		w.mu.Unlock()
	}
}

// Await waits until the pushed scorecard matches the finished match and
// returns how many scorecards arrived.
func (w *watcher) Await(ctx context.Context, ml MatchLog) (int, error) {
	deadline := time.Now().Add(settleTimeout)
	for {
		w.mu.Lock()
		last, count := w.last, w.count
		w.mu.Unlock()

		var mismatch error
		if !last.HasEnded {
			mismatch = fmt.Errorf("live: no final scorecard after %d messages", count)
		}
		for i := range ml.Innings {
			if mismatch != nil {
				break
			}
			want, err := expectedCard(ml.Innings[i])
			if err != nil {
				return count, err
			}
			mismatch = compareCard(i, last.Innings[i], want)
		}
		if mismatch == nil {
			return count, nil
		}
		if time.Now().After(deadline) {
			return count, mismatch
		}
		select {
		case <-ctx.Done():
			return count, ctx.Err()
		case <-w.done:
			return count, fmt.Errorf("live feed closed: %w", mismatch)
		case <-time.After(settlePoll):
		}
	}
}

// Close ends the subscription.
func (w *watcher) Close() {
	_ = w.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	_ = w.conn.Close()
	<-w.done
}
