// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/okian/ballbyball/internal/domain/types"
	"github.com/okian/ballbyball/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	HealthDependencies
	PlayerDependencies
	TeamDependencies
	MatchDependencies
	EventDependencies
	MatchStatsDependencies
	LeaderboardDependencies
	LiveDependencies
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

const defaultMaxLeaderboardLimit = 100

// Option configures a Server.
type Option func(*Server)

// WithAPIKeys sets the API key to user id mapping used for authentication.
func WithAPIKeys(keys map[string]string) Option {
	return func(s *Server) {
		s.apiKeys = keys
	}
}

// WithMaxLeaderboardLimit caps the limit accepted by the leaderboard.
func WithMaxLeaderboardLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithLive enables the websocket route backed by hub.
func WithLive(hub LiveServer) Option {
	return func(s *Server) {
		s.hub = hub
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	apiKeys  map[string]string
	maxLimit int
	hub      LiveServer

	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	playersHandler     *PlayersHandler
	teamsHandler       *TeamsHandler
	matchesHandler     *MatchesHandler
	eventsHandler      *EventsHandler
	matchStatsHandler  *MatchStatsHandler
	leaderboardHandler *LeaderboardHandler
	liveHandler        *LiveHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{maxLimit: defaultMaxLeaderboardLimit}
	for _, opt := range opts {
		opt(s)
	}

	v := newValidator()
	s.healthHandler = NewHealthHandler(deps)
	s.statsHandler = NewStatsHandler(statsProvider)
	s.playersHandler = NewPlayersHandler(deps, v)
	s.teamsHandler = NewTeamsHandler(deps, v)
	s.matchesHandler = NewMatchesHandler(deps, v)
	s.eventsHandler = NewEventsHandler(deps, v)
	s.matchStatsHandler = NewMatchStatsHandler(deps)
	s.leaderboardHandler = NewLeaderboardHandler(deps, s.maxLimit)
	if s.hub != nil {
		s.liveHandler = NewLiveHandler(deps, s.hub)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	public := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, MetricsMiddleware(h, endpoint))
	}
	private := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, MetricsMiddleware(RequireAPIKey(s.apiKeys, h), endpoint))
	}

	public("GET /healthz", "healthz", s.healthHandler.HandleHealth)
	mux.Handle("GET /metrics", s.healthHandler.MetricsHandler())
	public("GET /stats", "stats", s.statsHandler.HandleStats)

	private("GET /api/players", "players", s.playersHandler.HandleList)
	private("POST /api/players", "players", s.playersHandler.HandleCreate)
	private("GET /api/players/{id}", "player", s.playersHandler.HandleGet)
	private("GET /api/players/{id}/stats", "player_stats", s.playersHandler.HandleStats)

	private("GET /api/teams", "teams", s.teamsHandler.HandleList)
	private("POST /api/teams", "teams", s.teamsHandler.HandleCreate)
	private("GET /api/teams/{id}", "team", s.teamsHandler.HandleGet)
	private("PUT /api/teams/{id}", "team", s.teamsHandler.HandleUpdate)

	private("GET /api/matches", "matches", s.matchesHandler.HandleList)
	private("POST /api/matches", "matches", s.matchesHandler.HandleCreate)
	private("GET /api/matches/{id}", "match", s.matchesHandler.HandleGet)
	private("PUT /api/matches/{id}", "match", s.matchesHandler.HandleUpdate)
	private("DELETE /api/matches/{id}", "match", s.matchesHandler.HandleDelete)

	private("GET /api/matches/{id}/events", "events", s.eventsHandler.HandleList)
	private("POST /api/matches/{id}/events", "events", s.eventsHandler.HandleAppend)
	private("DELETE /api/matches/{id}/events/last", "undo", s.eventsHandler.HandleUndo)

	private("GET /api/matches/{id}/scorecard", "scorecard", s.matchStatsHandler.HandleScorecard)
	private("GET /api/matches/{id}/overs", "overs", s.matchStatsHandler.HandleOvers)
	private("GET /api/matches/{id}/runrate", "runrate", s.matchStatsHandler.HandleRunRate)
	private("GET /api/matches/{id}/worm", "worm", s.matchStatsHandler.HandleWorm)

	private("GET /api/leaderboard", "leaderboard", s.leaderboardHandler.HandleGetLeaderboard)
	private("GET /api/leaderboard/{playerID}", "rank", s.leaderboardHandler.HandleGetRank)

	if s.liveHandler != nil {
		private("GET /api/matches/{id}/live", "live", s.liveHandler.HandleLive)
	}

	logger.Get().Debug(ctx, "api routes registered", logger.Bool("live", s.liveHandler != nil))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// userOf returns the caller set by RequireAPIKey.
func userOf(r *http.Request) string {
	id, _ := UserID(r.Context())
	return id
}

// decode reads a JSON body into dst and validates it.
func decode(r *http.Request, v *validator.Validate, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return v.Struct(dst)
}
