package simulate

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/okian/ballbyball/internal/domain/model"
	"github.com/okian/ballbyball/internal/domain/scoring"
	"github.com/okian/ballbyball/pkg/logger"
)

// squad is one side of a simulated match.
type squad struct {
	teamID  string
	players []string
}

// bowlers returns the players who bowl, from the tail of the order.
func (s squad) bowlers() []string {
	n := min(bowlersPerSide, len(s.players))
	return s.players[len(s.players)-n:]
}

type appendResult struct {
	Events    []model.BallEvent `json:"events"`
	Match     model.Match       `json:"match"`
	Duplicate bool              `json:"duplicate"`
}

type curPlayer struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type matchPatch struct {
	CurTeam    *int        `json:"curTeam,omitempty"`
	CurPlayers []curPlayer `json:"curPlayers,omitempty"`
	OnStrike   string      `json:"onStrike,omitempty"`
	HasEnded   *bool       `json:"hasEnded,omitempty"`
}

func lineup(batsmen []string, bowler string) []curPlayer {
	out := make([]curPlayer, 0, len(batsmen)+1)
	for _, id := range batsmen {
		out = append(out, curPlayer{ID: id, Type: model.PlayerTypeBatsman})
	}
	return append(out, curPlayer{ID: bowler, Type: model.PlayerTypeBowler})
}

// player simulates one scorer working through matches.
type player struct {
	cfg   *Config
	c     *Client
	gen   *Generator
	stats *Stats
	log   logger.Logger
}

// setupMatch creates two squads and a match with the home side batting.
func (p *player) setupMatch(ctx context.Context, n int) (model.Match, [2]squad, error) {
	var squads [2]squad
	for side, name := range []string{"Home", "Away"} {
		for i := range p.cfg.TeamSize {
			var pl model.Player
			body := map[string]string{"name": fmt.Sprintf("%s %d/%d", name, n, i+1)}
			if _, err := p.c.Do(ctx, http.MethodPost, "/api/players", body, &pl); err != nil {
				return model.Match{}, squads, fmt.Errorf("create player: %w", err)
			}
			squads[side].players = append(squads[side].players, pl.ID)
		}
		var t model.Team
		body := map[string]any{"name": fmt.Sprintf("%s XI %d", name, n), "playerIds": squads[side].players}
		if _, err := p.c.Do(ctx, http.MethodPost, "/api/teams", body, &t); err != nil {
			return model.Match{}, squads, fmt.Errorf("create team: %w", err)
		}
		squads[side].teamID = t.ID
	}

	bat, field := squads[0], squads[1]
	var m model.Match
	_, err := p.c.Do(ctx, http.MethodPost, "/api/matches", map[string]any{
		"name":       fmt.Sprintf("Simulated match %d", n),
		"teamIds":    []string{bat.teamID, field.teamID},
		"overs":      p.cfg.Overs,
		"curPlayers": lineup(bat.players[:2], field.bowlers()[0]),
		"onStrike":   bat.players[0],
	}, &m)
	if err != nil {
		return model.Match{}, squads, fmt.Errorf("create match: %w", err)
	}
	return m, squads, nil
}

// playInnings bowls until the overs run out, the side is all out or the
// target is reached. A target of zero means no chase.
func (p *player) playInnings(ctx context.Context, m model.Match, bat, field squad, target int, runs map[string]int) (InningsLog, model.Match, error) {
	out := InningsLog{TeamID: bat.teamID, Codes: []string{}}
	bowlers := field.bowlers()
	path := "/api/matches/" + m.ID + "/events"
	next, over, legal, total := 2, 0, 0, 0

	for !scoring.InningsComplete(legal, m.Overs) {
		code := p.gen.Next()
		key := fmt.Sprintf("%s-%d-%d", m.ID, m.CurTeam, len(out.Codes))
		var res appendResult
		if _, err := p.c.Do(ctx, http.MethodPost, path, map[string]string{"type": code}, &res, "Idempotency-Key", key); err != nil {
			p.stats.BallsFailed.Add(1)
			return out, m, fmt.Errorf("ball %d: %w", len(out.Codes), err)
		}
		p.stats.BallsSubmitted.Add(1)

		if p.gen.Chance(p.cfg.Resubmit) {
			var dup appendResult
			if _, err := p.c.Do(ctx, http.MethodPost, path, map[string]string{"type": code}, &dup, "Idempotency-Key", key); err != nil {
				return out, m, fmt.Errorf("resubmit ball %d: %w", len(out.Codes), err)
			}
			if !dup.Duplicate {
				return out, m, fmt.Errorf("resubmitted ball %d was recorded twice", len(out.Codes))
			}
			p.stats.BallsDuplicate.Add(1)
		}

		out.Codes = append(out.Codes, code)
		m = res.Match
		d, err := scoring.ParseCode(code)
		if err != nil {
			return out, m, err
		}
		striker := res.Events[0].BatsmanID
		runs[striker] += d.BatRuns()
		total += d.TeamRuns()
		if d.IsLegal() {
			legal++
		}
		overDone := d.IsLegal() && legal%scoring.BallsPerOver == 0

		switch {
		case target > 0 && total >= target:
			return out, m, nil
		case d.IsWicket() && next >= len(bat.players):
			return out, m, nil
		case scoring.InningsComplete(legal, m.Overs):
			return out, m, nil
		case !d.IsWicket() && !overDone:
			continue
		}

		batsmen, onStrike := m.Batsmen(), m.OnStrike
		if d.IsWicket() {
			incoming := bat.players[next]
			next++
			if i := slices.Index(batsmen, striker); i >= 0 {
				batsmen[i] = incoming
			}
			if onStrike == striker {
				onStrike = incoming
			}
		}
		bowler := m.Bowler()
		if overDone {
			over++
			bowler = bowlers[over%len(bowlers)]
		}
		if _, err := p.c.Do(ctx, http.MethodPut, "/api/matches/"+m.ID, matchPatch{
			CurPlayers: lineup(batsmen, bowler),
			OnStrike:   onStrike,
		}, &m); err != nil {
			return out, m, fmt.Errorf("change players: %w", err)
		}
	}
	return out, m, nil
}

// playMatch plays both innings of a new match and verifies its scorecard.
func (p *player) playMatch(ctx context.Context, n int, watch bool) (MatchLog, map[string]int, error) {
	m, squads, err := p.setupMatch(ctx, n)
	if err != nil {
		return MatchLog{}, nil, err
	}
	ml := MatchLog{MatchID: m.ID}
	runs := make(map[string]int)
	p.log.Debug(ctx, "match created", logger.String("match_id", m.ID), logger.Int("n", n))

	var w *watcher
	if watch {
		if w, err = dialLive(ctx, p.cfg, m.ID); err != nil {
			p.log.Warn(ctx, "live watch unavailable", logger.String("match_id", m.ID), logger.Error(err))
		} else {
			defer w.Close()
		}
	}

	if ml.Innings[0], m, err = p.playInnings(ctx, m, squads[0], squads[1], 0, runs); err != nil {
		return ml, runs, err
	}
	if err := verifyInnings(ctx, p.c, m.ID, 0, ml.Innings[0]); err != nil {
		return ml, runs, err
	}

	first, err := scoring.Aggregate(eventsOf(ml.Innings[0]), scoring.ScopeTeam)
	if err != nil {
		return ml, runs, err
	}
	second := 1
	if _, err := p.c.Do(ctx, http.MethodPut, "/api/matches/"+m.ID, matchPatch{
		CurTeam:    &second,
		CurPlayers: lineup(squads[1].players[:2], squads[0].bowlers()[0]),
		OnStrike:   squads[1].players[0],
	}, &m); err != nil {
		return ml, runs, fmt.Errorf("switch innings: %w", err)
	}
	if ml.Innings[1], m, err = p.playInnings(ctx, m, squads[1], squads[0], first.Runs+1, runs); err != nil {
		return ml, runs, err
	}

	ended := true
	if _, err := p.c.Do(ctx, http.MethodPut, "/api/matches/"+m.ID, matchPatch{HasEnded: &ended}, &m); err != nil {
		return ml, runs, fmt.Errorf("end match: %w", err)
	}
	for i := range ml.Innings {
		if err := verifyInnings(ctx, p.c, m.ID, i, ml.Innings[i]); err != nil {
			return ml, runs, err
		}
	}
	if w != nil {
		msgs, err := w.Await(ctx, ml)
		p.stats.LiveMessages.Add(int64(msgs))
		if err != nil {
			return ml, runs, err
		}
	}

	p.stats.MatchesPlayed.Add(1)
	p.stats.MatchesVerified.Add(1)
	return ml, runs, nil
}
