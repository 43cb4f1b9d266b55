package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/ballbyball/internal/adapters/http/live"
	eventqueue "github.com/okian/ballbyball/internal/adapters/mq/queue"
	"github.com/okian/ballbyball/internal/domain/model"
	"github.com/okian/ballbyball/internal/domain/views"
	"github.com/okian/ballbyball/pkg/logger"
	"github.com/okian/ballbyball/pkg/metrics"
)

// Refresh recomputes the derived state of a changed match: the cached
// scorecard, live subscribers, the update stream and the leaderboard.
// It runs on the refresh workers.
func (s *Service) Refresh(ctx context.Context, u eventqueue.Update) error {
	start := time.Now()
	defer func() {
		metrics.RecordStatsLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	var errs []error
	if u.Reason == model.UpdateDeleted {
		s.broadcast(live.Message{Type: live.TypeDeleted, MatchID: u.MatchID, Reason: u.Reason, Timestamp: s.now()})
	} else if err := s.refreshScorecard(ctx, u); err != nil {
		metrics.RecordStatsError()
		errs = append(errs, err)
	}

	for _, id := range u.PlayerIDs {
		if err := s.rankPlayer(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("ranking %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// refreshScorecard holds the match lock so a write cannot land between
// reading the events and caching the result.
func (s *Service) refreshScorecard(ctx context.Context, u eventqueue.Update) error {
	unlock := s.lockMatch(u.MatchID)
	defer unlock()

	m, err := s.store.GetMatch(ctx, u.MatchID)
	if errors.Is(err, ErrNotFound) {
		// Deleted while queued.
		return nil
	}
	if err != nil {
		return err
	}
	events, err := s.store.ListEvents(ctx, u.MatchID)
	if err != nil {
		return err
	}
	sc, err := views.Scorecard(m, events)
	if err != nil {
		return err
	}

	if err := s.scorecards.Put(ctx, sc); err != nil {
		s.logger.Warn(ctx, "scorecard cache write failed", logger.String("match_id", m.ID), logger.Error(err))
	}
	s.broadcast(live.Message{Type: live.TypeScorecard, MatchID: m.ID, Reason: u.Reason, Payload: sc, Timestamp: s.now()})
	if err := s.publisher.Publish(ctx, u.Reason, sc); err != nil {
		s.logger.Warn(ctx, "match update not published", logger.String("match_id", m.ID), logger.Error(err))
	}
	return nil
}

func (s *Service) broadcast(msg live.Message) {
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(msg)
	}
}

// rankPlayer stores the career runs of a player on its owner's leaderboard.
func (s *Service) rankPlayer(ctx context.Context, playerID string) error {
	p, err := s.store.GetPlayer(ctx, playerID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	events, err := s.store.EventsByPlayer(ctx, playerID)
	if err != nil {
		return err
	}
	career, err := views.Career(events, playerID)
	if err != nil {
		return err
	}
	_, err = s.leaderboards.For(p.UserID).Set(ctx, playerID, career.Batting.Runs)
	return err
}

// LiveSnapshot is the first message a new live subscriber receives.
func (s *Service) LiveSnapshot(ctx context.Context, userID, matchID string) (live.Message, error) {
	sc, err := s.Scorecard(ctx, userID, matchID)
	if err != nil {
		return live.Message{}, err
	}
	return live.Message{Type: live.TypeScorecard, MatchID: matchID, Reason: "snapshot", Payload: sc, Timestamp: s.now()}, nil
}
