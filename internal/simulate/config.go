package simulate

import (
	"sync/atomic"
	"time"
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL    string        // Base URL of the service
	APIKey     string        // X-API-Key of the scorer
	Matches    int           // Number of matches to play
	Overs      int           // Overs per innings
	TeamSize   int           // Players per team
	Workers    int           // Matches played concurrently
	Timeout    time.Duration // HTTP request timeout
	Seed       uint64        // Seed of the delivery generator; 0 picks one
	Resubmit   float64       // Share of balls sent twice to exercise idempotency
	Watch      bool          // Follow the first match over its websocket
	OutputFile string        // Output file for the played deliveries
	Verbose    bool          // Enable verbose logging
}

// Stats holds run statistics. Counters are updated concurrently.
type Stats struct {
	MatchesPlayed   atomic.Int64
	MatchesVerified atomic.Int64
	BallsSubmitted  atomic.Int64
	BallsDuplicate  atomic.Int64
	BallsFailed     atomic.Int64
	LiveMessages    atomic.Int64
	StartTime       time.Time
	Duration        time.Duration
}

// InningsLog is what the simulator bowled in one innings.
type InningsLog struct {
	TeamID string   `json:"teamId"`
	Codes  []string `json:"codes"`
}

// MatchLog is the record of one simulated match.
type MatchLog struct {
	MatchID string        `json:"matchId"`
	Innings [2]InningsLog `json:"innings"`
}
