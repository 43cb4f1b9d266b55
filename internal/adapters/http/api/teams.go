package api

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"

	service "github.com/okian/ballbyball/internal/app"
	"github.com/okian/ballbyball/internal/domain/model"
)

// TeamDependencies defines the team operations.
type TeamDependencies interface {
	CreateTeam(ctx context.Context, userID, name string, playerIDs []string) (model.Team, error)
	GetTeam(ctx context.Context, userID, id string) (model.Team, error)
	UpdateTeam(ctx context.Context, userID, id string, patch service.TeamPatch) (model.Team, error)
	ListTeams(ctx context.Context, userID string) ([]model.Team, error)
}

// TeamsHandler handles team requests.
type TeamsHandler struct {
	deps     TeamDependencies
	validate *validator.Validate
}

// NewTeamsHandler creates a new teams handler.
func NewTeamsHandler(deps TeamDependencies, v *validator.Validate) *TeamsHandler {
	return &TeamsHandler{deps: deps, validate: v}
}

// HandleList handles GET /api/teams.
func (h *TeamsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	teams, err := h.deps.ListTeams(r.Context(), userOf(r))
	if err != nil {
		fail(w, r, Wrap("api.list_teams", err))
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

// HandleCreate handles POST /api/teams.
func (h *TeamsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_team"
	var req createTeamRequest
	if err := decode(r, h.validate, &req); err != nil {
		fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	t, err := h.deps.CreateTeam(r.Context(), userOf(r), req.Name, req.PlayerIDs)
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// HandleGet handles GET /api/teams/{id}.
func (h *TeamsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	t, err := h.deps.GetTeam(r.Context(), userOf(r), r.PathValue("id"))
	if err != nil {
		fail(w, r, Wrap("api.get_team", err))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// HandleUpdate handles PUT /api/teams/{id}.
func (h *TeamsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_team"
	var req updateTeamRequest
	if err := decode(r, h.validate, &req); err != nil {
		fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	t, err := h.deps.UpdateTeam(r.Context(), userOf(r), r.PathValue("id"), req.patch())
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, t)
}
