package repository

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/okian/ballbyball/internal/domain/model"
)

// MemoryStore keeps everything in process memory. It backs tests and
// deployments without a database; nothing survives a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	players map[string]model.Player
	teams   map[string]model.Team
	matches map[string]model.Match
	events  map[string][]model.BallEvent // match id -> events in play order
	eventID map[string]struct{}          // model.EventKey of all stored events
	order   []string                     // match ids in creation order
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players: make(map[string]model.Player),
		teams:   make(map[string]model.Team),
		matches: make(map[string]model.Match),
		events:  make(map[string][]model.BallEvent),
		eventID: make(map[string]struct{}),
	}
}

func cloneTeam(t model.Team) model.Team {
	t.PlayerIDs = slices.Clone(t.PlayerIDs)
	return t
}

func cloneMatch(m model.Match) model.Match {
	m.CurPlayers = slices.Clone(m.CurPlayers)
	return m
}

func (s *MemoryStore) CreatePlayer(_ context.Context, p model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[p.ID]; ok {
		return ErrConflict
	}
	s.players[p.ID] = p
	return nil
}

func (s *MemoryStore) GetPlayer(_ context.Context, id string) (model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[id]
	if !ok {
		return model.Player{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) ListPlayers(_ context.Context, userID string, ids []string) ([]model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Player{}
	if len(ids) > 0 {
		for _, id := range ids {
			if p, ok := s.players[id]; ok && p.UserID == userID {
				out = append(out, p)
			}
		}
		return out, nil
	}
	for _, p := range s.players {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) PlayerIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.players))
	for id := range s.players {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) CreateTeam(_ context.Context, t model.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[t.ID]; ok {
		return ErrConflict
	}
	s.teams[t.ID] = cloneTeam(t)
	return nil
}

func (s *MemoryStore) GetTeam(_ context.Context, id string) (model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.teams[id]
	if !ok {
		return model.Team{}, ErrNotFound
	}
	return cloneTeam(t), nil
}

func (s *MemoryStore) UpdateTeam(_ context.Context, t model.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[t.ID]; !ok {
		return ErrNotFound
	}
	s.teams[t.ID] = cloneTeam(t)
	return nil
}

func (s *MemoryStore) ListTeams(_ context.Context, userID string) ([]model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Team{}
	for _, t := range s.teams {
		if t.UserID == userID {
			out = append(out, cloneTeam(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) CreateMatch(_ context.Context, m model.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matches[m.ID]; ok {
		return ErrConflict
	}
	s.matches[m.ID] = cloneMatch(m)
	s.order = append(s.order, m.ID)
	return nil
}

func (s *MemoryStore) GetMatch(_ context.Context, id string) (model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[id]
	if !ok {
		return model.Match{}, ErrNotFound
	}
	return cloneMatch(m), nil
}

func (s *MemoryStore) UpdateMatch(_ context.Context, m model.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matches[m.ID]; !ok {
		return ErrNotFound
	}
	s.matches[m.ID] = cloneMatch(m)
	return nil
}

func (s *MemoryStore) DeleteMatch(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matches[id]; !ok {
		return ErrNotFound
	}
	for _, e := range s.events[id] {
		delete(s.eventID, model.EventKey(id, e.ID))
	}
	delete(s.matches, id)
	delete(s.events, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return nil
}

// ListMatches returns the matches of userID, newest first.
func (s *MemoryStore) ListMatches(_ context.Context, userID string) ([]model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Match{}
	for i := len(s.order) - 1; i >= 0; i-- {
		if m := s.matches[s.order[i]]; m.UserID == userID {
			out = append(out, cloneMatch(m))
		}
	}
	return out, nil
}

func (s *MemoryStore) AppendEvents(_ context.Context, m model.Match, events []model.BallEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matches[m.ID]; !ok {
		return ErrNotFound
	}
	for _, e := range events {
		if _, ok := s.eventID[model.EventKey(m.ID, e.ID)]; ok {
			return fmt.Errorf("%w: event %s", ErrConflict, e.ID)
		}
	}
	for _, e := range events {
		s.eventID[model.EventKey(m.ID, e.ID)] = struct{}{}
	}
	s.events[m.ID] = append(s.events[m.ID], events...)
	s.matches[m.ID] = cloneMatch(m)
	return nil
}

func (s *MemoryStore) ListEvents(_ context.Context, matchID string) ([]model.BallEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.matches[matchID]; !ok {
		return nil, ErrNotFound
	}
	return append([]model.BallEvent{}, s.events[matchID]...), nil
}

func (s *MemoryStore) UndoLastEvent(_ context.Context, m model.Match) (model.BallEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matches[m.ID]; !ok {
		return model.BallEvent{}, ErrNotFound
	}
	evs := s.events[m.ID]
	if len(evs) == 0 {
		return model.BallEvent{}, ErrNotFound
	}
	last := evs[len(evs)-1]
	s.events[m.ID] = evs[:len(evs)-1]
	delete(s.eventID, model.EventKey(m.ID, last.ID))
	s.matches[m.ID] = cloneMatch(m)
	return last, nil
}

func (s *MemoryStore) EventsByPlayer(_ context.Context, playerID string) ([]model.BallEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.BallEvent
	for _, id := range s.order {
		for _, e := range s.events[id] {
			if e.BatsmanID == playerID || e.BowlerID == playerID || e.DismissedID == playerID {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() {}
