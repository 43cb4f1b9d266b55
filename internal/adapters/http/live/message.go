package live

import "time"

// Message types.
const (
	TypeScorecard = "scorecard"
	TypeDeleted   = "deleted"
	TypeHeartbeat = "heartbeat"
	TypeError     = "error"
)

// Message is what the server pushes to a subscriber.
type Message struct {
	Type      string    `json:"type"`
	MatchID   string    `json:"matchId,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ClientMessage is what a subscriber may send.
type ClientMessage struct {
	Type string `json:"type"`
}

// ErrorPayload is the payload of a TypeError message.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
