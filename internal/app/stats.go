package service

import (
	"context"
	"errors"
	"time"

	"github.com/okian/ballbyball/internal/adapters/cache"
	"github.com/okian/ballbyball/internal/domain/types"
	"github.com/okian/ballbyball/internal/domain/views"
	"github.com/okian/ballbyball/pkg/logger"
	"github.com/okian/ballbyball/pkg/metrics"
)

// Scorecard returns the live view of a match, from the cache when fresh.
func (s *Service) Scorecard(ctx context.Context, userID, matchID string) (views.ScorecardView, error) {
	m, err := s.GetMatch(ctx, userID, matchID)
	if err != nil {
		return views.ScorecardView{}, err
	}
	sc, err := s.scorecards.Get(ctx, matchID)
	switch {
	case err == nil:
		return sc, nil
	case !errors.Is(err, cache.ErrMiss):
		s.logger.Warn(ctx, "scorecard cache read failed", logger.String("match_id", matchID), logger.Error(err))
	}

	unlock := s.lockMatch(matchID)
	defer unlock()
	if m, err = s.store.GetMatch(ctx, matchID); err != nil {
		return views.ScorecardView{}, err
	}

	start := time.Now()
	events, err := s.store.ListEvents(ctx, matchID)
	if err != nil {
		return views.ScorecardView{}, err
	}
	sc, err = views.Scorecard(m, events)
	if err != nil {
		metrics.RecordStatsError()
		return views.ScorecardView{}, err
	}
	metrics.RecordStatsLatency(float64(time.Since(start).Microseconds()) / 1000)

	if err := s.scorecards.Put(ctx, sc); err != nil {
		s.logger.Warn(ctx, "scorecard cache write failed", logger.String("match_id", matchID), logger.Error(err))
	}
	return sc, nil
}

// checkInnings checks the innings index and that userID owns the match.
func (s *Service) checkInnings(ctx context.Context, userID, matchID string, innings int) error {
	if innings != 0 && innings != 1 {
		return invalid("innings must be 0 or 1")
	}
	_, err := s.GetMatch(ctx, userID, matchID)
	return err
}

// Overs returns the per-over summaries of one innings.
func (s *Service) Overs(ctx context.Context, userID, matchID string, innings int) ([]views.OverSummary, error) {
	if err := s.checkInnings(ctx, userID, matchID, innings); err != nil {
		return nil, err
	}
	events, err := s.store.ListEvents(ctx, matchID)
	if err != nil {
		return nil, err
	}
	out, err := views.OverSummaries(events, innings)
	if out == nil {
		out = []views.OverSummary{}
	}
	return out, err
}

// RunRate returns runs per over and the cumulative run rate of one innings.
func (s *Service) RunRate(ctx context.Context, userID, matchID string, innings int) ([]views.OverRate, error) {
	if err := s.checkInnings(ctx, userID, matchID, innings); err != nil {
		return nil, err
	}
	events, err := s.store.ListEvents(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return views.RunRateByOver(events, innings)
}

// Worm returns the running totals of both innings.
func (s *Service) Worm(ctx context.Context, userID, matchID string) ([2][]views.WormPoint, error) {
	var out [2][]views.WormPoint
	if _, err := s.GetMatch(ctx, userID, matchID); err != nil {
		return out, err
	}
	events, err := s.store.ListEvents(ctx, matchID)
	if err != nil {
		return out, err
	}
	for i := range out {
		if out[i], err = views.Worm(events, i); err != nil {
			return out, err
		}
	}
	return out, nil
}

// PlayerStats returns the career record of a player of userID.
func (s *Service) PlayerStats(ctx context.Context, userID, playerID string) (views.CareerStats, error) {
	if _, err := s.GetPlayer(ctx, userID, playerID); err != nil {
		return views.CareerStats{}, err
	}
	events, err := s.store.EventsByPlayer(ctx, playerID)
	if err != nil {
		return views.CareerStats{}, err
	}
	return views.Career(events, playerID)
}

// TopN returns the n highest run scorers among the players of userID.
func (s *Service) TopN(ctx context.Context, userID string, n int) ([]types.Entry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	lb, ok := s.leaderboards.Lookup(userID)
	if !ok {
		return []types.Entry{}, nil
	}
	return lb.TopN(ctx, n)
}

// Rank returns the position of a player of userID among that user's players.
func (s *Service) Rank(ctx context.Context, userID, playerID string) (types.Entry, error) {
	if err := s.ready(); err != nil {
		return types.Entry{}, err
	}
	lb, ok := s.leaderboards.Lookup(userID)
	if !ok {
		return types.Entry{}, notOwned("player", playerID)
	}
	return lb.Rank(ctx, playerID)
}
