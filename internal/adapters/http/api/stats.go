package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/ballbyball/internal/domain/views"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats())
}

// MatchStatsDependencies defines the derived views of a match.
type MatchStatsDependencies interface {
	Scorecard(ctx context.Context, userID, matchID string) (views.ScorecardView, error)
	Overs(ctx context.Context, userID, matchID string, innings int) ([]views.OverSummary, error)
	RunRate(ctx context.Context, userID, matchID string, innings int) ([]views.OverRate, error)
	Worm(ctx context.Context, userID, matchID string) ([2][]views.WormPoint, error)
}

// MatchStatsHandler serves scorecards and per-over views.
type MatchStatsHandler struct {
	deps MatchStatsDependencies
}

// NewMatchStatsHandler creates a new match stats handler.
func NewMatchStatsHandler(deps MatchStatsDependencies) *MatchStatsHandler {
	return &MatchStatsHandler{deps: deps}
}

// innings reads ?innings=N, defaulting to the first innings.
func innings(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("innings")
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// HandleScorecard handles GET /api/matches/{id}/scorecard.
func (h *MatchStatsHandler) HandleScorecard(w http.ResponseWriter, r *http.Request) {
	sc, err := h.deps.Scorecard(r.Context(), userOf(r), r.PathValue("id"))
	if err != nil {
		fail(w, r, Wrap("api.scorecard", err))
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// HandleOvers handles GET /api/matches/{id}/overs?innings=N.
func (h *MatchStatsHandler) HandleOvers(w http.ResponseWriter, r *http.Request) {
	const op = "api.overs"
	inn, err := innings(r)
	if err != nil {
		fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	overs, err := h.deps.Overs(r.Context(), userOf(r), r.PathValue("id"), inn)
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, overs)
}

// HandleRunRate handles GET /api/matches/{id}/runrate?innings=N.
func (h *MatchStatsHandler) HandleRunRate(w http.ResponseWriter, r *http.Request) {
	const op = "api.runrate"
	inn, err := innings(r)
	if err != nil {
		fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	rates, err := h.deps.RunRate(r.Context(), userOf(r), r.PathValue("id"), inn)
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rates)
}

// HandleWorm handles GET /api/matches/{id}/worm.
func (h *MatchStatsHandler) HandleWorm(w http.ResponseWriter, r *http.Request) {
	worm, err := h.deps.Worm(r.Context(), userOf(r), r.PathValue("id"))
	if err != nil {
		fail(w, r, Wrap("api.worm", err))
		return
	}
	writeJSON(w, http.StatusOK, worm)
}
