package views

import (
	"github.com/okian/ballbyball/internal/domain/model"
	"github.com/okian/ballbyball/internal/domain/scoring"
)

// OverSummary describes one over of an innings.
type OverSummary struct {
	Over     int      `json:"over"`
	BowlerID string   `json:"bowlerId"`
	Codes    []string `json:"codes"`
	Runs     int      `json:"runs"`
	Wickets  int      `json:"wickets"`
	Extras   int      `json:"extras"`
	Legal    int      `json:"legal"`
}

// OverSummaries groups an innings into overs in play order.
func OverSummaries(events []model.BallEvent, innings int) ([]OverSummary, error) {
	inn := byInnings(events, innings)
	ds, err := scoring.ParseEvents(inn)
	if err != nil {
		return nil, err
	}

	var out []OverSummary
	for i, d := range ds {
		e := inn[i]
		if len(out) == 0 || out[len(out)-1].Over != e.Over {
			out = append(out, OverSummary{Over: e.Over, BowlerID: e.BowlerID, Codes: []string{}})
		}
		o := &out[len(out)-1]
		o.Codes = append(o.Codes, e.Type)
		o.Runs += d.TeamRuns()
		o.Extras += d.Extras()
		if d.IsWicket() {
			o.Wickets++
		}
		if d.IsLegal() {
			o.Legal++
		}
	}
	return out, nil
}

// OverRate is the scoring of one over and the run rate up to its end.
type OverRate struct {
	Over       int          `json:"over"`
	Runs       int          `json:"runs"`
	Cumulative int          `json:"cumulative"`
	RunRate    scoring.Rate `json:"runRate"`
}

// RunRateByOver returns runs per over and the cumulative run rate after each.
func RunRateByOver(events []model.BallEvent, innings int) ([]OverRate, error) {
	overs, err := OverSummaries(events, innings)
	if err != nil {
		return nil, err
	}

	out := make([]OverRate, 0, len(overs))
	total, legal := 0, 0
	for _, o := range overs {
		total += o.Runs
		legal += o.Legal
		out = append(out, OverRate{
			Over:       o.Over,
			Runs:       o.Runs,
			Cumulative: total,
			RunRate:    scoring.NewRate(float64(total), float64(legal), scoring.BallsPerOver),
		})
	}
	return out, nil
}

// WormPoint is the team total after a number of legal balls.
type WormPoint struct {
	Ball int `json:"ball"`
	Runs int `json:"runs"`
}

// Worm returns the running team total of an innings for charting. The first
// point is always (0, 0). Runs from illegal deliveries land on the point of
// the last legal ball, or on a second point at ball 0 before the first one.
func Worm(events []model.BallEvent, innings int) ([]WormPoint, error) {
	ds, err := scoring.ParseEvents(byInnings(events, innings))
	if err != nil {
		return nil, err
	}

	out := []WormPoint{{}}
	ball, runs := 0, 0
	for _, d := range ds {
		runs += d.TeamRuns()
		if d.IsLegal() {
			ball++
		}
		if last := &out[len(out)-1]; len(out) > 1 && last.Ball == ball {
			last.Runs = runs
			continue
		}
		out = append(out, WormPoint{Ball: ball, Runs: runs})
	}
	return out, nil
}
