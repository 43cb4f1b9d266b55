package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/ballbyball/internal/domain/model"
	"github.com/okian/ballbyball/pkg/logger"
)

// MatchInput describes a new match.
type MatchInput struct {
	Name              string
	TeamIDs           [2]string
	CurTeam           int
	Overs             int // 0 uses the configured default
	CurPlayers        []model.CurPlayer
	OnStrike          string
	AllowSinglePlayer bool
}

// MatchPatch lists the fields of a match to change; nil leaves a field as is.
type MatchPatch struct {
	Name       *string
	Overs      *int
	CurTeam    *int
	CurPlayers *[]model.CurPlayer
	OnStrike   *string
	HasEnded   *bool
}

// TeamPatch lists the fields of a team to change; nil leaves a field as is.
type TeamPatch struct {
	Name      *string
	PlayerIDs *[]string
}

// notOwned hides resources of other users behind ErrNotFound.
func notOwned(kind, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func (s *Service) CreatePlayer(ctx context.Context, userID, name string) (model.Player, error) {
	if err := s.ready(); err != nil {
		return model.Player{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Player{}, invalid("player name is required")
	}
	p := model.Player{ID: uuid.NewString(), UserID: userID, Name: name}
	if err := s.store.CreatePlayer(ctx, p); err != nil {
		return model.Player{}, err
	}
	// Ranked from the start with zero runs.
	if _, err := s.leaderboards.For(userID).Set(ctx, p.ID, 0); err != nil {
		s.logger.Warn(ctx, "leaderboard set failed", logger.String("player_id", p.ID), logger.Error(err))
	}
	return p, nil
}

func (s *Service) GetPlayer(ctx context.Context, userID, id string) (model.Player, error) {
	if err := s.ready(); err != nil {
		return model.Player{}, err
	}
	p, err := s.store.GetPlayer(ctx, id)
	if err != nil {
		return model.Player{}, err
	}
	if p.UserID != userID {
		return model.Player{}, notOwned("player", id)
	}
	return p, nil
}

func (s *Service) ListPlayers(ctx context.Context, userID string, ids []string) ([]model.Player, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.ListPlayers(ctx, userID, ids)
}

// ownedPlayers fails unless every id is a player of userID.
func (s *Service) ownedPlayers(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	uniq := slices.Clone(ids)
	slices.Sort(uniq)
	uniq = slices.Compact(uniq)
	if len(uniq) != len(ids) {
		return invalid("duplicate player ids")
	}
	found, err := s.store.ListPlayers(ctx, userID, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		return invalid("unknown player ids")
	}
	return nil
}

func (s *Service) CreateTeam(ctx context.Context, userID, name string, playerIDs []string) (model.Team, error) {
	if err := s.ready(); err != nil {
		return model.Team{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Team{}, invalid("team name is required")
	}
	if err := s.ownedPlayers(ctx, userID, playerIDs); err != nil {
		return model.Team{}, err
	}
	t := model.Team{ID: uuid.NewString(), UserID: userID, Name: name, PlayerIDs: slices.Clone(playerIDs)}
	if t.PlayerIDs == nil {
		t.PlayerIDs = []string{}
	}
	if err := s.store.CreateTeam(ctx, t); err != nil {
		return model.Team{}, err
	}
	return t, nil
}

func (s *Service) GetTeam(ctx context.Context, userID, id string) (model.Team, error) {
	if err := s.ready(); err != nil {
		return model.Team{}, err
	}
	t, err := s.store.GetTeam(ctx, id)
	if err != nil {
		return model.Team{}, err
	}
	if t.UserID != userID {
		return model.Team{}, notOwned("team", id)
	}
	return t, nil
}

func (s *Service) UpdateTeam(ctx context.Context, userID, id string, patch TeamPatch) (model.Team, error) {
	t, err := s.GetTeam(ctx, userID, id)
	if err != nil {
		return model.Team{}, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return model.Team{}, invalid("team name is required")
		}
		t.Name = name
	}
	if patch.PlayerIDs != nil {
		if err := s.ownedPlayers(ctx, userID, *patch.PlayerIDs); err != nil {
			return model.Team{}, err
		}
		t.PlayerIDs = append([]string{}, *patch.PlayerIDs...)
	}
	if err := s.store.UpdateTeam(ctx, t); err != nil {
		return model.Team{}, err
	}
	return t, nil
}

func (s *Service) ListTeams(ctx context.Context, userID string) ([]model.Team, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.ListTeams(ctx, userID)
}

func (s *Service) CreateMatch(ctx context.Context, userID string, in MatchInput) (model.Match, error) {
	if err := s.ready(); err != nil {
		return model.Match{}, err
	}
	now := s.now()
	m := model.Match{
		ID:                uuid.NewString(),
		UserID:            userID,
		Name:              strings.TrimSpace(in.Name),
		TeamIDs:           in.TeamIDs,
		CurTeam:           in.CurTeam,
		Overs:             in.Overs,
		CurPlayers:        slices.Clone(in.CurPlayers),
		OnStrike:          in.OnStrike,
		AllowSinglePlayer: in.AllowSinglePlayer,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if m.Overs == 0 {
		m.Overs = s.defaultOvers
	}
	if m.CurPlayers == nil {
		m.CurPlayers = []model.CurPlayer{}
	}
	if err := s.validateMatch(ctx, &m); err != nil {
		return model.Match{}, err
	}
	if err := s.store.CreateMatch(ctx, m); err != nil {
		return model.Match{}, err
	}
	s.logger.Debug(ctx, "match created", logger.String("match_id", m.ID), logger.String("user_id", userID))
	return m, nil
}

// validateMatch checks teams, overs and the current players, and defaults
// the striker to the first batsman.
func (s *Service) validateMatch(ctx context.Context, m *model.Match) error {
	if m.Name == "" {
		return invalid("match name is required")
	}
	if m.TeamIDs[0] == "" || m.TeamIDs[1] == "" || m.TeamIDs[0] == m.TeamIDs[1] {
		return invalid("a match needs two distinct teams")
	}
	if m.CurTeam != 0 && m.CurTeam != 1 {
		return invalid("curTeam must be 0 or 1")
	}
	if m.Overs < 1 || m.Overs > s.maxOvers {
		return invalid("overs must be between 1 and %d", s.maxOvers)
	}

	var teams [2]model.Team
	for i, id := range m.TeamIDs {
		t, err := s.store.GetTeam(ctx, id)
		if errors.Is(err, ErrNotFound) || (err == nil && t.UserID != m.UserID) {
			return invalid("unknown team %s", id)
		}
		if err != nil {
			return err
		}
		teams[i] = t
	}

	batting := teams[m.CurTeam].PlayerIDs
	bowling := teams[1-m.CurTeam].PlayerIDs
	var batsmen, bowlers int
	for _, p := range m.CurPlayers {
		switch p.Type {
		case model.PlayerTypeBatsman:
			batsmen++
			if !slices.Contains(batting, p.ID) {
				return invalid("batsman %s is not in the batting team", p.ID)
			}
		case model.PlayerTypeBowler:
			bowlers++
			if !slices.Contains(bowling, p.ID) {
				return invalid("bowler %s is not in the fielding team", p.ID)
			}
		default:
			return invalid("unknown player type %q", p.Type)
		}
	}
	maxBatsmen := 2
	if m.AllowSinglePlayer {
		maxBatsmen = 1
	}
	if batsmen > maxBatsmen || bowlers > 1 {
		return invalid("at most %d batsmen and one bowler may be selected", maxBatsmen)
	}
	if bs := m.Batsmen(); len(bs) == 2 && bs[0] == bs[1] {
		return invalid("the two batsmen must differ")
	}

	switch {
	case m.OnStrike == "" && batsmen > 0:
		m.OnStrike = m.Batsmen()[0]
	case m.OnStrike != "" && !slices.Contains(m.Batsmen(), m.OnStrike):
		return invalid("onStrike must be a current batsman")
	}
	return nil
}

func (s *Service) GetMatch(ctx context.Context, userID, id string) (model.Match, error) {
	if err := s.ready(); err != nil {
		return model.Match{}, err
	}
	m, err := s.store.GetMatch(ctx, id)
	if err != nil {
		return model.Match{}, err
	}
	if m.UserID != userID {
		return model.Match{}, notOwned("match", id)
	}
	return m, nil
}

func (s *Service) ListMatches(ctx context.Context, userID string) ([]model.Match, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.ListMatches(ctx, userID)
}

// UpdateMatch applies patch. Switching the batting side without naming the
// new players clears the current players.
func (s *Service) UpdateMatch(ctx context.Context, userID, id string, patch MatchPatch) (model.Match, error) {
	if err := s.ready(); err != nil {
		return model.Match{}, err
	}
	unlock := s.lockMatch(id)
	defer unlock()

	m, err := s.GetMatch(ctx, userID, id)
	if err != nil {
		return model.Match{}, err
	}

	if patch.Name != nil {
		m.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Overs != nil {
		m.Overs = *patch.Overs
	}
	if patch.CurTeam != nil && *patch.CurTeam != m.CurTeam {
		m.CurTeam = *patch.CurTeam
		m.CurPlayers = []model.CurPlayer{}
		m.OnStrike = ""
	}
	if patch.CurPlayers != nil {
		m.CurPlayers = append([]model.CurPlayer{}, *patch.CurPlayers...)
		if patch.OnStrike == nil && !slices.Contains(m.Batsmen(), m.OnStrike) {
			m.OnStrike = ""
		}
	}
	if patch.OnStrike != nil {
		m.OnStrike = *patch.OnStrike
	}
	if patch.HasEnded != nil {
		m.HasEnded = *patch.HasEnded
	}
	if err := s.validateMatch(ctx, &m); err != nil {
		return model.Match{}, err
	}

	m.UpdatedAt = s.now()
	if err := s.store.UpdateMatch(ctx, m); err != nil {
		return model.Match{}, err
	}
	s.invalidate(ctx, m.ID)
	s.enqueue(ctx, model.MatchUpdate{MatchID: m.ID, Reason: model.UpdateEdited, At: m.UpdatedAt})
	return m, nil
}

// DeleteMatch removes a match and its events and re-ranks its batsmen.
func (s *Service) DeleteMatch(ctx context.Context, userID, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	unlock := s.lockMatch(id)
	defer unlock()

	m, err := s.GetMatch(ctx, userID, id)
	if err != nil {
		return err
	}
	events, err := s.store.ListEvents(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteMatch(ctx, id); err != nil {
		return err
	}
	for _, e := range events {
		s.deduper.Unrecord(ctx, e.Key())
	}
	s.invalidate(ctx, id)
	s.enqueue(ctx, model.MatchUpdate{
		MatchID:   m.ID,
		Reason:    model.UpdateDeleted,
		PlayerIDs: batsmenOf(events),
		At:        s.now(),
	})
	return nil
}

// batsmenOf returns the distinct batsmen of events in first seen order.
func batsmenOf(events []model.BallEvent) []string {
	var out []string
	for _, e := range events {
		if e.BatsmanID != "" && !slices.Contains(out, e.BatsmanID) {
			out = append(out, e.BatsmanID)
		}
	}
	return out
}
