package simulate

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/ballbyball/internal/domain/model"
	"github.com/okian/ballbyball/internal/domain/scoring"
	"github.com/okian/ballbyball/internal/domain/views"
)

// eventsOf turns an innings log into events for local aggregation.
func eventsOf(in InningsLog) []model.BallEvent {
	out := make([]model.BallEvent, len(in.Codes))
	for i, code := range in.Codes {
		out[i] = model.BallEvent{ID: fmt.Sprint(i), Type: code}
	}
	return out
}

// expectedCard tallies an innings log the way a scorer would by hand.
func expectedCard(in InningsLog) (views.InningsCard, error) {
	s, err := scoring.Aggregate(eventsOf(in), scoring.ScopeTeam)
	if err != nil {
		return views.InningsCard{}, err
	}
	return views.InningsCard{
		TeamID:  in.TeamID,
		Runs:    s.Runs,
		Wickets: s.Dismissals,
		Overs:   s.Overs(),
		Extras:  s.Extras,
	}, nil
}

// compareCard reports the first difference between got and want.
func compareCard(innings int, got, want views.InningsCard) error {
	switch {
	case got.TeamID != want.TeamID:
		return fmt.Errorf("innings %d: team %s, want %s", innings, got.TeamID, want.TeamID)
	case got.Runs != want.Runs:
		return fmt.Errorf("innings %d: runs %d, want %d", innings, got.Runs, want.Runs)
	case got.Wickets != want.Wickets:
		return fmt.Errorf("innings %d: wickets %d, want %d", innings, got.Wickets, want.Wickets)
	case got.Overs != want.Overs:
		return fmt.Errorf("innings %d: overs %s, want %s", innings, got.Overs, want.Overs)
	case got.Extras != want.Extras:
		return fmt.Errorf("innings %d: extras %d, want %d", innings, got.Extras, want.Extras)
	}
	return nil
}

// verifyInnings checks the served scorecard of one innings against the log.
func verifyInnings(ctx context.Context, c *Client, matchID string, innings int, in InningsLog) error {
	want, err := expectedCard(in)
	if err != nil {
		return err
	}
	var sc views.ScorecardView
	if _, err := c.Do(ctx, http.MethodGet, "/api/matches/"+matchID+"/scorecard", nil, &sc); err != nil {
		return fmt.Errorf("scorecard: %w", err)
	}
	return compareCard(innings, sc.Innings[innings], want)
}

// verifyLeaderboard waits for the refresh workers to rank each batsman with
// the runs tallied locally. Every simulated player bats in one match only.
func verifyLeaderboard(ctx context.Context, c *Client, runs map[string]int) error {
	deadline := time.Now().Add(settleTimeout)
	for id, want := range runs {
		for {
			var e struct {
				Runs int `json:"runs"`
			}
			_, err := c.Do(ctx, http.MethodGet, "/api/leaderboard/"+id, nil, &e)
			if err == nil && e.Runs == want {
				break
			}
			if time.Now().After(deadline) {
				return fmt.Errorf("leaderboard: player %s has %d runs, want %d (last error: %v)", id, e.Runs, want, err)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(settlePoll):
			}
		}
	}
	return nil
}
