package views

import (
	"github.com/okian/ballbyball/internal/domain/model"
	"github.com/okian/ballbyball/internal/domain/scoring"
)

// Milestone thresholds of a single innings.
const (
	fiftyRuns   = 50
	centuryRuns = 100
)

// CareerBatting is a player's batting record across matches.
type CareerBatting struct {
	Figures
	Innings      int             `json:"innings"`
	NotOuts      int             `json:"notOuts"`
	Average      scoring.Average `json:"average"`
	Fifties      int             `json:"fifties"`
	Centuries    int             `json:"centuries"`
	HighestScore int             `json:"highestScore"`
}

// CareerBowling is a player's bowling record across matches.
type CareerBowling struct {
	Figures
	Wickets int          `json:"wickets"`
	Economy scoring.Rate `json:"economy"`
}

// CareerStats is the multi-match record of one player.
type CareerStats struct {
	PlayerID string        `json:"playerId"`
	Matches  int           `json:"matches"`
	Batting  CareerBatting `json:"batting"`
	Bowling  CareerBowling `json:"bowling"`
}

type inningsKey struct {
	match   string
	innings int
}

// Career folds every event involving playerID into career statistics.
// Events may span matches; an innings is one (match, innings) the player
// batted in, and it is completed when the player was dismissed in it, as
// striker or non-striker.
func Career(events []model.BallEvent, playerID string) (CareerStats, error) {
	batted := filter(events, func(e *model.BallEvent) bool {
		return e.BatsmanID == playerID || e.DismissedID == playerID
	})
	bowled := filter(events, func(e *model.BallEvent) bool { return e.BowlerID == playerID })

	bat, err := Batsman(batted, playerID)
	if err != nil {
		return CareerStats{}, err
	}
	bowl, err := Bowler(bowled, playerID)
	if err != nil {
		return CareerStats{}, err
	}

	// Per innings totals in first seen order.
	var order []inningsKey
	scores := make(map[inningsKey]int)
	dismissed := make(map[inningsKey]bool)
	for i := range batted {
		e := &batted[i]
		k := inningsKey{e.MatchID, e.Innings}
		if _, ok := scores[k]; !ok {
			order = append(order, k)
			scores[k] = 0
		}
		d, err := scoring.ParseCode(e.Type)
		if err != nil {
			return CareerStats{}, err
		}
		if e.BatsmanID == playerID {
			scores[k] += d.BatRuns()
		}
		if d.IsWicket() && e.Dismissed() == playerID {
			dismissed[k] = true
		}
	}

	out := CareerStats{PlayerID: playerID}
	out.Batting.Figures = bat
	out.Batting.Innings = len(order)
	completed := 0
	for _, k := range order {
		score := scores[k]
		switch {
		case score >= centuryRuns:
			out.Batting.Centuries++
		case score >= fiftyRuns:
			out.Batting.Fifties++
		}
		if score > out.Batting.HighestScore {
			out.Batting.HighestScore = score
		}
		if dismissed[k] {
			completed++
		}
	}
	out.Batting.NotOuts = out.Batting.Innings - completed
	out.Batting.Average, err = scoring.BattingAverage(bat.Runs, out.Batting.Innings, &completed)
	if err != nil {
		return CareerStats{}, err
	}

	out.Bowling.Figures = bowl
	out.Bowling.Wickets = bowl.Dismissals
	out.Bowling.Economy = bowl.RunRate

	matches := make(map[string]struct{})
	for _, e := range batted {
		matches[e.MatchID] = struct{}{}
	}
	for _, e := range bowled {
		matches[e.MatchID] = struct{}{}
	}
	out.Matches = len(matches)
	return out, nil
}
