package scoring

import (
	"fmt"

	"github.com/okian/ballbyball/internal/domain/model"
)

// BallsPerOver is the number of legal deliveries in an over.
const BallsPerOver = 6

// Scope selects the runs policy of an aggregation.
type Scope int

const (
	// ScopeBatting credits runs off the bat only.
	ScopeBatting Scope = iota
	// ScopeBowling charges runs conceded: bat runs plus wide and no-ball
	// penalties. Byes and leg-byes are not charged to the bowler, and run
	// outs do not count as the bowler's dismissals.
	ScopeBowling
	// ScopeTeam counts the team total: bat runs plus all extras.
	ScopeTeam
)

func (s Scope) String() string {
	switch s {
	case ScopeBatting:
		return "batting"
	case ScopeBowling:
		return "bowling"
	case ScopeTeam:
		return "team"
	}
	return fmt.Sprintf("scope(%d)", int(s))
}

// Summary is the fold of an event sequence under one scope.
type Summary struct {
	Runs            int `json:"runs"`
	BallsFaced      int `json:"ballsFaced"`
	LegalDeliveries int `json:"legalDeliveries"`
	Fours           int `json:"fours"`
	Sixes           int `json:"sixes"`
	Dismissals      int `json:"dismissals"`
	Extras          int `json:"extras"`
	Deliveries      int `json:"deliveries"`
}

// StrikeRate is runs per 100 balls faced.
func (s Summary) StrikeRate() Rate {
	return NewRate(float64(s.Runs), float64(s.BallsFaced), 100)
}

// RunRate is runs per six legal deliveries. Under ScopeBowling it is the economy.
func (s Summary) RunRate() Rate {
	return NewRate(float64(s.Runs), float64(s.LegalDeliveries), BallsPerOver)
}

// Overs renders the legal deliveries as completed overs and balls, e.g. "3.2".
func (s Summary) Overs() string {
	return FormatOvers(s.LegalDeliveries)
}

// FormatOvers renders a legal ball count in cricket notation.
func FormatOvers(legal int) string {
	return fmt.Sprintf("%d.%d", legal/BallsPerOver, legal%BallsPerOver)
}

// Aggregate folds events, in play order, into a Summary under scope.
// Callers filter the sequence to the player or innings they need first.
// Any unknown outcome code fails the whole call; no partial summary is returned.
func Aggregate(events []model.BallEvent, scope Scope) (Summary, error) {
	if scope < ScopeBatting || scope > ScopeTeam {
		return Summary{}, fmt.Errorf("%w: %d", ErrInvalidScope, int(scope))
	}

	var s Summary
	for i := range events {
		d, err := ParseCode(events[i].Type)
		if err != nil {
			return Summary{}, fmt.Errorf("event %q: %w", events[i].ID, err)
		}
		s.add(d, scope)
	}
	return s, nil
}

func (s *Summary) add(d Delivery, scope Scope) {
	s.Deliveries++
	if d.IsLegal() {
		s.BallsFaced++
		s.LegalDeliveries++
	}
	switch d.Boundary() {
	case BoundaryFour:
		s.Fours++
	case BoundarySix:
		s.Sixes++
	}
	if d.IsWicket() && (scope != ScopeBowling || d.BowlerWicket()) {
		s.Dismissals++
	}
	s.Extras += d.Extras()
	s.Runs += RunsFor(d, scope)
}

// RunsFor returns the contribution of one delivery to the runs of scope.
func RunsFor(d Delivery, scope Scope) int {
	switch scope {
	case ScopeBatting:
		return d.BatRuns()
	case ScopeBowling:
		return d.Conceded()
	default:
		return d.TeamRuns()
	}
}

// ParseEvents parses the codes of events, failing on the first unknown one.
func ParseEvents(events []model.BallEvent) ([]Delivery, error) {
	out := make([]Delivery, len(events))
	for i := range events {
		d, err := ParseCode(events[i].Type)
		if err != nil {
			return nil, fmt.Errorf("event %q: %w", events[i].ID, err)
		}
		out[i] = d
	}
	return out, nil
}
