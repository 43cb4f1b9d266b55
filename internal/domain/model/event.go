// Package model contains domain models passed between layers.
package model

import "time"

// BallEvent is one recorded delivery outcome.
// Events of a match form an append-only sequence ordered by play.
type BallEvent struct {
	ID          string    `json:"id"`                    // unique within the match, also used for idempotency
	MatchID     string    `json:"matchId"`               // owning match
	Type        string    `json:"type"`                  // outcome code, e.g. "4", "-2", "-31"
	BatsmanID   string    `json:"batsmanId"`             // striker when the ball was bowled
	BowlerID    string    `json:"bowlerId"`              // bowler of the delivery
	DismissedID string    `json:"dismissedId,omitempty"` // batsman out on a wicket; empty means the striker
	Innings     int       `json:"innings"`               // index of the batting team, 0 or 1
	Over        int       `json:"over"`                  // zero-based over number within the innings
	Ball        int       `json:"ball"`                  // 1-based ball within the over; illegal deliveries repeat the number
	CreatedAt   time.Time `json:"createdAt"`
}

// Dismissed returns who was out if the delivery was a wicket.
func (e BallEvent) Dismissed() string {
	if e.DismissedID != "" {
		return e.DismissedID
	}
	return e.BatsmanID
}

// Key scopes the event id to its match.
func (e BallEvent) Key() string { return EventKey(e.MatchID, e.ID) }

// EventKey returns the idempotency key of event id within matchID.
func EventKey(matchID, id string) string { return matchID + "/" + id }

// Reasons a match needs its derived views refreshed.
const (
	UpdateAppended = "appended"
	UpdateUndone   = "undone"
	UpdateEdited   = "edited"
	UpdateDeleted  = "deleted"
)

// MatchUpdate asks the refresh workers to recompute the views of a match.
type MatchUpdate struct {
	MatchID string
	Reason  string
	// PlayerIDs are the batsmen whose career totals may have moved.
	PlayerIDs []string
	At        time.Time
}
