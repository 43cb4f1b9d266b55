package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/okian/ballbyball/internal/domain/model"
	"github.com/okian/ballbyball/internal/domain/scoring"
	"github.com/okian/ballbyball/pkg/logger"
	"github.com/okian/ballbyball/pkg/metrics"
)

// EventInput is one submitted delivery outcome. Batsman and bowler default
// to the striker and the current bowler of the match. DismissedID names the
// batsman out on a wicket when it is not the striker.
type EventInput struct {
	ID          string
	Type        string
	BatsmanID   string
	BowlerID    string
	DismissedID string
}

// AppendResult reports what AppendEvents stored.
type AppendResult struct {
	Events []model.BallEvent `json:"events"`
	Match  model.Match       `json:"match"`
	// Duplicate is set when every submitted id was already recorded.
	Duplicate bool `json:"duplicate"`
}

// AppendEvents validates every code, then assigns positions, rotates strike
// and stores the events of one match atomically. Ids already recorded are
// skipped.
func (s *Service) AppendEvents(ctx context.Context, userID, matchID string, inputs []EventInput) (AppendResult, error) {
	if err := s.ready(); err != nil {
		return AppendResult{}, err
	}
	if len(inputs) == 0 {
		return AppendResult{}, invalid("no events submitted")
	}
	inputs = slices.Clone(inputs)
	deliveries := make([]scoring.Delivery, len(inputs))
	for i, in := range inputs {
		d, err := scoring.ParseCode(in.Type)
		if err != nil {
			metrics.RecordEventRejected("invalid_kind")
			return AppendResult{}, fmt.Errorf("event %d: %w", i, err)
		}
		deliveries[i] = d
	}

	unlock := s.lockMatch(matchID)
	defer unlock()

	m, err := s.GetMatch(ctx, userID, matchID)
	if err != nil {
		return AppendResult{}, err
	}
	if m.HasEnded {
		metrics.RecordEventRejected("match_ended")
		return AppendResult{}, ErrMatchEnded
	}

	existing, err := s.store.ListEvents(ctx, matchID)
	if err != nil {
		return AppendResult{}, err
	}
	stored := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		stored[e.ID] = struct{}{}
	}

	// Drop ids seen before in this match; remember the rest until the write
	// settles. The store is checked too since the deduper forgets old ids.
	var fresh []int
	var recorded []string
	for i := range inputs {
		if inputs[i].ID == "" {
			inputs[i].ID = uuid.NewString()
		}
		key := model.EventKey(matchID, inputs[i].ID)
		if s.deduper.SeenAndRecord(ctx, key) {
			metrics.RecordEventDuplicate()
			continue
		}
		if _, ok := stored[inputs[i].ID]; ok {
			metrics.RecordEventDuplicate()
			continue
		}
		recorded = append(recorded, key)
		fresh = append(fresh, i)
	}
	if len(fresh) == 0 {
		return AppendResult{Events: []model.BallEvent{}, Match: m, Duplicate: true}, nil
	}
	forget := func() {
		for _, key := range recorded {
			s.deduper.Unrecord(ctx, key)
		}
	}

	bowled, err := inningsDeliveries(existing, m.CurTeam)
	if err != nil {
		forget()
		return AppendResult{}, err
	}
	pos := scoring.NextPosition(bowled)

	now := s.now()
	events := make([]model.BallEvent, 0, len(fresh))
	for _, i := range fresh {
		in, d := inputs[i], deliveries[i]
		if scoring.InningsComplete(pos.Legal, m.Overs) {
			forget()
			metrics.RecordEventRejected("innings_complete")
			return AppendResult{}, ErrInningsComplete
		}
		e := model.BallEvent{
			ID:        in.ID,
			MatchID:   m.ID,
			Type:      d.Code,
			BatsmanID: in.BatsmanID,
			BowlerID:  in.BowlerID,
			Innings:   m.CurTeam,
			Over:      pos.Over,
			Ball:      pos.Ball,
			CreatedAt: now,
		}
		if e.BatsmanID == "" {
			e.BatsmanID = m.OnStrike
		}
		if e.BowlerID == "" {
			e.BowlerID = m.Bowler()
		}
		switch {
		case e.BatsmanID == "":
			forget()
			metrics.RecordEventRejected("no_striker")
			return AppendResult{}, ErrNoStriker
		case e.BowlerID == "":
			forget()
			metrics.RecordEventRejected("no_bowler")
			return AppendResult{}, ErrNoBowler
		}
		if in.DismissedID != "" && in.DismissedID != e.BatsmanID {
			if !d.IsWicket() || !slices.Contains(m.Batsmen(), in.DismissedID) {
				forget()
				metrics.RecordEventRejected("invalid_dismissal")
				return AppendResult{}, invalid("event %d: dismissed player %s is not a batsman out on a wicket", i, in.DismissedID)
			}
			e.DismissedID = in.DismissedID
		}
		events = append(events, e)

		overDone := scoring.OverComplete(pos, d)
		if m.OnStrike != "" {
			m.OnStrike = scoring.NextStrike(m.OnStrike, m.NonStriker(), d, overDone)
		}
		if d.IsLegal() {
			pos.Legal++
			pos.Over, pos.Ball = pos.Legal/scoring.BallsPerOver, pos.Legal%scoring.BallsPerOver+1
		}
	}

	m.UpdatedAt = now
	if err := s.store.AppendEvents(ctx, m, events); err != nil {
		forget()
		if errors.Is(err, ErrConflict) && s.allStored(ctx, matchID, events) {
			metrics.RecordEventDuplicate()
			if current, err := s.store.GetMatch(ctx, matchID); err == nil {
				m = current
			}
			return AppendResult{Events: []model.BallEvent{}, Match: m, Duplicate: true}, nil
		}
		return AppendResult{}, err
	}
	metrics.RecordEventsRecorded(len(events))

	s.invalidate(ctx, m.ID)
	s.enqueue(ctx, model.MatchUpdate{
		MatchID:   m.ID,
		Reason:    model.UpdateAppended,
		PlayerIDs: batsmenOf(events),
		At:        now,
	})
	return AppendResult{Events: events, Match: m}, nil
}

// allStored reports whether another writer already stored every event id.
func (s *Service) allStored(ctx context.Context, matchID string, events []model.BallEvent) bool {
	current, err := s.store.ListEvents(ctx, matchID)
	if err != nil {
		return false
	}
	ids := make(map[string]struct{}, len(current))
	for _, e := range current {
		ids[e.ID] = struct{}{}
	}
	for _, e := range events {
		if _, ok := ids[e.ID]; !ok {
			return false
		}
	}
	return true
}

// UndoLastEvent removes the most recent event of a match and gives strike
// back to its batsman when still at the crease.
func (s *Service) UndoLastEvent(ctx context.Context, userID, matchID string) (model.BallEvent, model.Match, error) {
	if err := s.ready(); err != nil {
		return model.BallEvent{}, model.Match{}, err
	}
	unlock := s.lockMatch(matchID)
	defer unlock()

	m, err := s.GetMatch(ctx, userID, matchID)
	if err != nil {
		return model.BallEvent{}, model.Match{}, err
	}
	events, err := s.store.ListEvents(ctx, matchID)
	if err != nil {
		return model.BallEvent{}, model.Match{}, err
	}
	if len(events) == 0 {
		return model.BallEvent{}, model.Match{}, fmt.Errorf("%w: no events to undo", ErrNotFound)
	}
	last := events[len(events)-1]
	if last.Innings == m.CurTeam && slices.Contains(m.Batsmen(), last.BatsmanID) {
		m.OnStrike = last.BatsmanID
	}
	m.UpdatedAt = s.now()

	removed, err := s.store.UndoLastEvent(ctx, m)
	if err != nil {
		return model.BallEvent{}, model.Match{}, err
	}
	s.deduper.Unrecord(ctx, model.EventKey(matchID, removed.ID))
	metrics.RecordEventUndone()

	s.invalidate(ctx, m.ID)
	s.enqueue(ctx, model.MatchUpdate{
		MatchID:   m.ID,
		Reason:    model.UpdateUndone,
		PlayerIDs: []string{removed.BatsmanID},
		At:        m.UpdatedAt,
	})
	return removed, m, nil
}

// ListEvents returns the events of a match in play order.
func (s *Service) ListEvents(ctx context.Context, userID, matchID string) ([]model.BallEvent, error) {
	if _, err := s.GetMatch(ctx, userID, matchID); err != nil {
		return nil, err
	}
	return s.store.ListEvents(ctx, matchID)
}

func inningsDeliveries(events []model.BallEvent, innings int) ([]scoring.Delivery, error) {
	inn := make([]model.BallEvent, 0, len(events))
	for _, e := range events {
		if e.Innings == innings {
			inn = append(inn, e)
		}
	}
	return scoring.ParseEvents(inn)
}

// enqueue schedules a refresh. A full queue only delays derived views,
// which are recomputed on read.
func (s *Service) enqueue(ctx context.Context, u model.MatchUpdate) {
	if err := s.queue.Enqueue(ctx, u); err != nil {
		s.logger.Warn(ctx, "refresh not scheduled",
			logger.String("match_id", u.MatchID),
			logger.String("reason", u.Reason),
			logger.Error(err))
		return
	}
	metrics.UpdateQueueSize(s.queue.Len(ctx))
}

// invalidate drops the cached scorecard so reads recompute it.
func (s *Service) invalidate(ctx context.Context, matchID string) {
	if err := s.scorecards.Delete(ctx, matchID); err != nil {
		s.logger.Warn(ctx, "scorecard invalidation failed",
			logger.String("match_id", matchID), logger.Error(err))
	}
}
