package api

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"

	service "github.com/okian/ballbyball/internal/app"
	"github.com/okian/ballbyball/internal/domain/model"
)

// MatchDependencies defines the match operations.
type MatchDependencies interface {
	CreateMatch(ctx context.Context, userID string, in service.MatchInput) (model.Match, error)
	GetMatch(ctx context.Context, userID, id string) (model.Match, error)
	UpdateMatch(ctx context.Context, userID, id string, patch service.MatchPatch) (model.Match, error)
	DeleteMatch(ctx context.Context, userID, id string) error
	ListMatches(ctx context.Context, userID string) ([]model.Match, error)
}

// MatchesHandler handles match requests.
type MatchesHandler struct {
	deps     MatchDependencies
	validate *validator.Validate
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchDependencies, v *validator.Validate) *MatchesHandler {
	return &MatchesHandler{deps: deps, validate: v}
}

// HandleList handles GET /api/matches.
func (h *MatchesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	matches, err := h.deps.ListMatches(r.Context(), userOf(r))
	if err != nil {
		fail(w, r, Wrap("api.list_matches", err))
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

// HandleCreate handles POST /api/matches.
func (h *MatchesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_match"
	var req createMatchRequest
	if err := decode(r, h.validate, &req); err != nil {
		fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	m, err := h.deps.CreateMatch(r.Context(), userOf(r), req.input())
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// HandleGet handles GET /api/matches/{id}.
func (h *MatchesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	m, err := h.deps.GetMatch(r.Context(), userOf(r), r.PathValue("id"))
	if err != nil {
		fail(w, r, Wrap("api.get_match", err))
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HandleUpdate handles PUT /api/matches/{id}.
func (h *MatchesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_match"
	var req updateMatchRequest
	if err := decode(r, h.validate, &req); err != nil {
		fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	m, err := h.deps.UpdateMatch(r.Context(), userOf(r), r.PathValue("id"), req.patch())
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HandleDelete handles DELETE /api/matches/{id}.
func (h *MatchesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteMatch(r.Context(), userOf(r), r.PathValue("id")); err != nil {
		fail(w, r, Wrap("api.delete_match", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
