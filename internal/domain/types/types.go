// Package types holds the small value types shared by the service and its adapters.
package types

// Entry is one row of the career runs leaderboard. Players on equal runs
// share a rank.
type Entry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"playerId"`
	Runs     int    `json:"runs"`
}
