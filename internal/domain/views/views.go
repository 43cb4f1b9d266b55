// Package views applies the scoring aggregator at the scopes the service serves:
// one batsman, one bowler, an innings, a range of overs, a career, and the
// live scorecard of a match.
package views

import (
	"github.com/okian/ballbyball/internal/domain/model"
	"github.com/okian/ballbyball/internal/domain/scoring"
)

// Figures is a summary with its derived rates resolved for presentation.
type Figures struct {
	scoring.Summary
	Overs      string       `json:"overs"`
	StrikeRate scoring.Rate `json:"strikeRate"`
	RunRate    scoring.Rate `json:"runRate"`
}

func figures(s scoring.Summary) Figures {
	return Figures{
		Summary:    s,
		Overs:      s.Overs(),
		StrikeRate: s.StrikeRate(),
		RunRate:    s.RunRate(),
	}
}

func filter(events []model.BallEvent, keep func(*model.BallEvent) bool) []model.BallEvent {
	var out []model.BallEvent
	for i := range events {
		if keep(&events[i]) {
			out = append(out, events[i])
		}
	}
	return out
}

func byInnings(events []model.BallEvent, innings int) []model.BallEvent {
	return filter(events, func(e *model.BallEvent) bool { return e.Innings == innings })
}

// Batsman folds the deliveries faced by playerID. Dismissals count the
// wickets in which playerID was out, at either end.
func Batsman(events []model.BallEvent, playerID string) (Figures, error) {
	s, err := scoring.Aggregate(filter(events, func(e *model.BallEvent) bool {
		return e.BatsmanID == playerID
	}), scoring.ScopeBatting)
	if err != nil {
		return Figures{}, err
	}
	s.Dismissals = 0
	for i := range events {
		out, err := dismisses(&events[i], playerID)
		if err != nil {
			return Figures{}, err
		}
		if out {
			s.Dismissals++
		}
	}
	return figures(s), nil
}

// dismisses reports whether e is a wicket in which playerID was out.
func dismisses(e *model.BallEvent, playerID string) (bool, error) {
	if e.Dismissed() != playerID {
		return false, nil
	}
	d, err := scoring.ParseCode(e.Type)
	if err != nil {
		return false, err
	}
	return d.IsWicket(), nil
}

// Bowler folds the deliveries bowled by playerID. RunRate is the economy.
func Bowler(events []model.BallEvent, playerID string) (Figures, error) {
	s, err := scoring.Aggregate(filter(events, func(e *model.BallEvent) bool {
		return e.BowlerID == playerID
	}), scoring.ScopeBowling)
	if err != nil {
		return Figures{}, err
	}
	return figures(s), nil
}

// Innings folds the team total of one innings.
func Innings(events []model.BallEvent, innings int) (Figures, error) {
	s, err := scoring.Aggregate(byInnings(events, innings), scoring.ScopeTeam)
	if err != nil {
		return Figures{}, err
	}
	return figures(s), nil
}

// OverRange folds the team total of overs [from, to] of one innings, zero based.
func OverRange(events []model.BallEvent, innings, from, to int) (Figures, error) {
	s, err := scoring.Aggregate(filter(events, func(e *model.BallEvent) bool {
		return e.Innings == innings && e.Over >= from && e.Over <= to
	}), scoring.ScopeTeam)
	if err != nil {
		return Figures{}, err
	}
	return figures(s), nil
}
