package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/okian/ballbyball/internal/domain/model"
	"github.com/okian/ballbyball/internal/domain/views"
)

// PlayerDependencies defines the player operations.
type PlayerDependencies interface {
	CreatePlayer(ctx context.Context, userID, name string) (model.Player, error)
	GetPlayer(ctx context.Context, userID, id string) (model.Player, error)
	ListPlayers(ctx context.Context, userID string, ids []string) ([]model.Player, error)
	PlayerStats(ctx context.Context, userID, id string) (views.CareerStats, error)
}

// PlayersHandler handles player requests.
type PlayersHandler struct {
	deps     PlayerDependencies
	validate *validator.Validate
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PlayerDependencies, v *validator.Validate) *PlayersHandler {
	return &PlayersHandler{deps: deps, validate: v}
}

// HandleList handles GET /api/players[?ids=a,b].
func (h *PlayersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_players"
	var ids []string
	if raw := r.URL.Query().Get("ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	players, err := h.deps.ListPlayers(r.Context(), userOf(r), ids)
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, players)
}

// HandleCreate handles POST /api/players.
func (h *PlayersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_player"
	var req createPlayerRequest
	if err := decode(r, h.validate, &req); err != nil {
		fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := h.deps.CreatePlayer(r.Context(), userOf(r), req.Name)
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HandleGet handles GET /api/players/{id}.
func (h *PlayersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_player"
	p, err := h.deps.GetPlayer(r.Context(), userOf(r), r.PathValue("id"))
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleStats handles GET /api/players/{id}/stats.
func (h *PlayersHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.player_stats"
	stats, err := h.deps.PlayerStats(r.Context(), userOf(r), r.PathValue("id"))
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
