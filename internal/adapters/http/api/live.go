package api

import (
	"context"
	"net/http"

	"github.com/okian/ballbyball/internal/adapters/http/live"
	"github.com/okian/ballbyball/pkg/logger"
)

// LiveDependencies provides the first message of a live subscription.
type LiveDependencies interface {
	LiveSnapshot(ctx context.Context, userID, matchID string) (live.Message, error)
}

// LiveServer subscribes an upgraded connection to a match.
type LiveServer interface {
	Serve(w http.ResponseWriter, r *http.Request, matchID string, initial *live.Message) error
}

// LiveHandler upgrades requests to live scorecard subscriptions.
type LiveHandler struct {
	deps LiveDependencies
	hub  LiveServer
}

// NewLiveHandler creates a new live handler.
func NewLiveHandler(deps LiveDependencies, hub LiveServer) *LiveHandler {
	return &LiveHandler{deps: deps, hub: hub}
}

// HandleLive handles GET /api/matches/{id}/live.
func (h *LiveHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	matchID := r.PathValue("id")
	snap, err := h.deps.LiveSnapshot(r.Context(), userOf(r), matchID)
	if err != nil {
		fail(w, r, Wrap("api.live", err))
		return
	}
	// The upgrader has already answered the request when this fails.
	if err := h.hub.Serve(w, r, matchID, &snap); err != nil {
		logger.Get().Warn(r.Context(), "live upgrade failed",
			logger.String("match_id", matchID), logger.Error(err))
	}
}
