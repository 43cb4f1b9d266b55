// Package live pushes scorecard updates to websocket subscribers of a match.
package live

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/okian/ballbyball/pkg/logger"
	"github.com/okian/ballbyball/pkg/metrics"
)

const broadcastBufferSize = 1024

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the hub logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.log = l
		}
	}
}

// WithAllowedOrigins restricts the browser origins allowed to subscribe.
// An empty list or "*" allows every origin.
func WithAllowedOrigins(origins []string) Option {
	return func(h *Hub) {
		h.origins = slices.Clone(origins)
	}
}

// Hub keeps the subscribers of every match and fans messages out to them.
type Hub struct {
	log      logger.Logger
	origins  []string
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	matches map[string]map[*Client]struct{}
	total   int

	broadcast  chan Message
	register   chan *Client
	unregister chan *Client

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a hub. Run must be called for it to do anything.
func NewHub(opts ...Option) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		log:        logger.Get().Named("live"),
		matches:    make(map[string]map[*Client]struct{}),
		broadcast:  make(chan Message, broadcastBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.origins) == 0 {
		return true
	}
	return slices.Contains(h.origins, "*") || slices.Contains(h.origins, origin)
}

// Run serves registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.ctx.Done():
			return
		case c := <-h.register:
			h.registerClient(c)
		case c := <-h.unregister:
			h.unregisterClient(c)
		case msg := <-h.broadcast:
			h.broadcastMessage(msg)
		}
	}
}

// Stop ends Run and disconnects every subscriber.
func (h *Hub) Stop() { h.cancel() }

// Serve upgrades the request and subscribes the connection to matchID.
// initial, when set, is the first message the subscriber receives.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, matchID string, initial *Message) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("upgrading live connection: %w", err)
	}

	c := newClient(uuid.NewString(), matchID, conn, h)
	if initial != nil {
		c.trySend(*initial)
	}
	h.Register(c)

	// Pumps outlive the request; they stop with the hub.
	go c.writePump(h.ctx)
	go c.readPump(h.ctx)

	h.log.Debug(r.Context(), "live subscriber connected",
		logger.String("client_id", c.ID), logger.String("match_id", matchID))
	return nil
}

// Register adds c to the subscribers of its match.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.ctx.Done():
		c.closeSend()
	}
}

// Unregister removes c and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.ctx.Done():
	}
}

// Broadcast queues msg for the subscribers of msg.MatchID without blocking.
func (h *Hub) Broadcast(msg Message) bool {
	select {
	case h.broadcast <- msg:
		return true
	default:
		metrics.RecordLivePublish("hub", "dropped")
		h.log.Warn(context.Background(), "live broadcast buffer full, dropping message",
			logger.String("match_id", msg.MatchID))
		return false
	}
}

// Subscribers returns the number of subscribers of matchID.
func (h *Hub) Subscribers(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.matches[matchID])
}

// Count returns the number of subscribers across all matches.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.total
}

func (h *Hub) registerClient(c *Client) {
	h.mu.Lock()
	set, ok := h.matches[c.MatchID]
	if !ok {
		set = make(map[*Client]struct{})
		h.matches[c.MatchID] = set
	}
	set[c] = struct{}{}
	h.total++
	total := h.total
	h.mu.Unlock()
	metrics.UpdateLiveSubscribers(total)
}

func (h *Hub) unregisterClient(c *Client) {
	h.mu.Lock()
	set := h.matches[c.MatchID]
	if _, ok := set[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.matches, c.MatchID)
	}
	h.total--
	total := h.total
	h.mu.Unlock()

	c.closeSend()
	metrics.UpdateLiveSubscribers(total)
}

func (h *Hub) broadcastMessage(msg Message) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.matches[msg.MatchID]))
	for c := range h.matches[msg.MatchID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if c.trySend(msg) {
			continue
		}
		// Too slow to keep up.
		h.log.Warn(h.ctx, "live subscriber buffer full, disconnecting",
			logger.String("client_id", c.ID), logger.String("match_id", msg.MatchID))
		h.unregisterClient(c)
	}
	if len(clients) > 0 {
		metrics.RecordLivePublish("hub", "ok")
	}
}

func (h *Hub) shutdown() {
	h.cancel()
	h.mu.Lock()
	var clients []*Client
	for _, set := range h.matches {
		for c := range set {
			clients = append(clients, c)
		}
	}
	h.matches = make(map[string]map[*Client]struct{})
	h.total = 0
	h.mu.Unlock()

	for _, c := range clients {
		c.closeSend()
	}
	metrics.UpdateLiveSubscribers(0)
}
