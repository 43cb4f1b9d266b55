// Package repository persists players, teams, matches and their ball events,
// and keeps the in-memory runs leaderboard.
package repository

import (
	"context"

	"github.com/okian/ballbyball/internal/domain/model"
	"github.com/okian/ballbyball/internal/domain/types"
)

// Store provides read/write access to scoring data.
// Events of a match are returned in the order they were appended.
type Store interface {
	CreatePlayer(ctx context.Context, p model.Player) error
	GetPlayer(ctx context.Context, id string) (model.Player, error)
	// ListPlayers returns the players of userID, restricted to ids when non-empty.
	ListPlayers(ctx context.Context, userID string, ids []string) ([]model.Player, error)
	// PlayerIDs returns the ids of every stored player, across users.
	PlayerIDs(ctx context.Context) ([]string, error)

	CreateTeam(ctx context.Context, t model.Team) error
	GetTeam(ctx context.Context, id string) (model.Team, error)
	UpdateTeam(ctx context.Context, t model.Team) error
	ListTeams(ctx context.Context, userID string) ([]model.Team, error)

	CreateMatch(ctx context.Context, m model.Match) error
	GetMatch(ctx context.Context, id string) (model.Match, error)
	UpdateMatch(ctx context.Context, m model.Match) error
	// DeleteMatch removes a match together with its events.
	DeleteMatch(ctx context.Context, id string) error
	ListMatches(ctx context.Context, userID string) ([]model.Match, error)

	// AppendEvents stores events after the existing ones and saves the match
	// state they produced, both or neither.
	AppendEvents(ctx context.Context, m model.Match, events []model.BallEvent) error
	ListEvents(ctx context.Context, matchID string) ([]model.BallEvent, error)
	// UndoLastEvent removes the most recent event of m and saves m.
	// Returns ErrNotFound when the match has no events.
	UndoLastEvent(ctx context.Context, m model.Match) (model.BallEvent, error)
	// EventsByPlayer returns every event where playerID batted or bowled,
	// grouped by match in play order.
	EventsByPlayer(ctx context.Context, playerID string) ([]model.BallEvent, error)

	Ping(ctx context.Context) error
	Close()
}

// Leaderboard ranks players by career runs.
type Leaderboard interface {
	// Set records the career runs of a player. Returns true when the value changed.
	Set(ctx context.Context, playerID string, runs int) (bool, error)

	// Rank returns the current rank and runs for a player.
	// Returns ErrNotFound if the player is unknown.
	Rank(ctx context.Context, playerID string) (types.Entry, error)

	// TopN returns the top-N entries ordered by runs desc.
	TopN(ctx context.Context, n int) ([]types.Entry, error)

	// Count returns the number of players tracked in the leaderboard.
	Count(ctx context.Context) int
}
