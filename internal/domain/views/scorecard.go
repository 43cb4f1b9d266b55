package views

import (
	"github.com/okian/ballbyball/internal/domain/model"
	"github.com/okian/ballbyball/internal/domain/scoring"
)

// InningsCard is the team total of one innings.
type InningsCard struct {
	TeamID  string       `json:"teamId"`
	Runs    int          `json:"runs"`
	Wickets int          `json:"wickets"`
	Overs   string       `json:"overs"`
	Extras  int          `json:"extras"`
	RunRate scoring.Rate `json:"runRate"`
}

// BatsmanCard is a current batsman's innings so far.
type BatsmanCard struct {
	PlayerID   string       `json:"playerId"`
	OnStrike   bool         `json:"onStrike"`
	Runs       int          `json:"runs"`
	Balls      int          `json:"balls"`
	Fours      int          `json:"fours"`
	Sixes      int          `json:"sixes"`
	StrikeRate scoring.Rate `json:"strikeRate"`
}

// BowlerCard is the current bowler's spell in this innings.
type BowlerCard struct {
	PlayerID string       `json:"playerId"`
	Overs    string       `json:"overs"`
	Runs     int          `json:"runs"`
	Wickets  int          `json:"wickets"`
	Economy  scoring.Rate `json:"economy"`
}

// ScorecardView is the live view of a match.
type ScorecardView struct {
	MatchID  string         `json:"matchId"`
	Name     string         `json:"name"`
	CurTeam  int            `json:"curTeam"`
	Overs    int            `json:"overs"`
	HasEnded bool           `json:"hasEnded"`
	Innings  [2]InningsCard `json:"innings"`
	Batsmen  []BatsmanCard  `json:"batsmen"`
	Bowler   *BowlerCard    `json:"bowler,omitempty"`
	// ThisOver lists the codes of the over in progress.
	ThisOver []string `json:"thisOver"`
	// Target and RequiredRunRate are set while the second innings is batting.
	Target          *int         `json:"target,omitempty"`
	RequiredRunRate scoring.Rate `json:"requiredRunRate"`
	Events          int          `json:"events"`
}

// Scorecard builds the live view of match from its events.
func Scorecard(match model.Match, events []model.BallEvent) (ScorecardView, error) {
	out := ScorecardView{
		MatchID:  match.ID,
		Name:     match.Name,
		CurTeam:  match.CurTeam,
		Overs:    match.Overs,
		HasEnded: match.HasEnded,
		Batsmen:  []BatsmanCard{},
		ThisOver: []string{},
		Events:   len(events),
	}

	var legal [2]int
	for i := range out.Innings {
		f, err := Innings(events, i)
		if err != nil {
			return ScorecardView{}, err
		}
		out.Innings[i] = InningsCard{
			TeamID:  match.TeamIDs[i],
			Runs:    f.Runs,
			Wickets: f.Dismissals,
			Overs:   f.Overs,
			Extras:  f.Extras,
			RunRate: f.RunRate,
		}
		legal[i] = f.LegalDeliveries
	}

	current := byInnings(events, match.CurTeam)
	for _, id := range match.Batsmen() {
		f, err := Batsman(current, id)
		if err != nil {
			return ScorecardView{}, err
		}
		out.Batsmen = append(out.Batsmen, BatsmanCard{
			PlayerID:   id,
			OnStrike:   id == match.OnStrike,
			Runs:       f.Runs,
			Balls:      f.BallsFaced,
			Fours:      f.Fours,
			Sixes:      f.Sixes,
			StrikeRate: f.StrikeRate,
		})
	}

	if id := match.Bowler(); id != "" {
		f, err := Bowler(current, id)
		if err != nil {
			return ScorecardView{}, err
		}
		out.Bowler = &BowlerCard{
			PlayerID: id,
			Overs:    f.Overs,
			Runs:     f.Runs,
			Wickets:  f.Dismissals,
			Economy:  f.RunRate,
		}
	}

	overs, err := OverSummaries(current, match.CurTeam)
	if err != nil {
		return ScorecardView{}, err
	}
	if n := len(overs); n > 0 && overs[n-1].Legal < scoring.BallsPerOver {
		out.ThisOver = overs[n-1].Codes
	}

	if match.CurTeam == 1 {
		target := out.Innings[0].Runs + 1
		out.Target = &target
		need := max(target-out.Innings[1].Runs, 0)
		if remaining := match.Overs*scoring.BallsPerOver - legal[1]; remaining > 0 {
			out.RequiredRunRate = scoring.NewRate(float64(need), float64(remaining), scoring.BallsPerOver)
		}
	}
	return out, nil
}
