package model

import "time"

// Player types of a CurPlayer.
const (
	PlayerTypeBatsman = "batsman"
	PlayerTypeBowler  = "bowler"
)

// Player is a static identity; all scoring state is derived from events.
type Player struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// Team groups players owned by one user.
type Team struct {
	ID        string   `json:"id"`
	UserID    string   `json:"userId"`
	Name      string   `json:"name"`
	PlayerIDs []string `json:"playerIds"`
}

// CurPlayer is a player currently at the crease or bowling.
type CurPlayer struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Match holds the mutable state of a game in progress.
// CurTeam indexes TeamIDs and names the batting side.
type Match struct {
	ID                string      `json:"id"`
	UserID            string      `json:"userId"`
	Name              string      `json:"name"`
	TeamIDs           [2]string   `json:"teamIds"`
	CurTeam           int         `json:"curTeam"`
	Overs             int         `json:"overs"`
	CurPlayers        []CurPlayer `json:"curPlayers"`
	OnStrike          string      `json:"onStrike"`
	AllowSinglePlayer bool        `json:"allowSinglePlayer"`
	HasEnded          bool        `json:"hasEnded"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

// BattingTeamID returns the id of the team currently batting.
func (m Match) BattingTeamID() string {
	return m.TeamIDs[m.CurTeam&1]
}

// BowlingTeamID returns the id of the team currently fielding.
func (m Match) BowlingTeamID() string {
	return m.TeamIDs[(m.CurTeam+1)&1]
}

// Batsmen returns the ids of the current batsmen in selection order.
func (m Match) Batsmen() []string {
	var out []string
	for _, p := range m.CurPlayers {
		if p.Type == PlayerTypeBatsman {
			out = append(out, p.ID)
		}
	}
	return out
}

// Bowler returns the id of the current bowler, or "" when none is selected.
func (m Match) Bowler() string {
	for _, p := range m.CurPlayers {
		if p.Type == PlayerTypeBowler {
			return p.ID
		}
	}
	return ""
}

// NonStriker returns the batsman who is not on strike, or "" when batting alone.
func (m Match) NonStriker() string {
	for _, id := range m.Batsmen() {
		if id != m.OnStrike {
			return id
		}
	}
	return ""
}
