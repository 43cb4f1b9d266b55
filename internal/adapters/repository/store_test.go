package repository_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okian/ballbyball/internal/adapters/repository"
	"github.com/okian/ballbyball/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryStore(t *testing.T) {
	storeContract(t, func() repository.Store { return repository.NewMemoryStore() })
}

// TestPostgresStore runs the same contract against a real database when
// BALLBYBALL_TEST_DATABASE_URL points at one.
func TestPostgresStore(t *testing.T) {
	url := os.Getenv("BALLBYBALL_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("BALLBYBALL_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pg, err := repository.NewPostgresStore(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pg.Close()
	if err := pg.EnsureSchema(ctx); err != nil {
		t.Fatalf("schema: %v", err)
	}
	storeContract(t, func() repository.Store { return pg })
}

func storeContract(t *testing.T, newStore func() repository.Store) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	Convey("Given a store with two teams of players", t, func() {
		s := newStore()
		user := "user-" + uuid.NewString()
		id := func(prefix string) string { return prefix + "-" + uuid.NewString() }

		var players []model.Player
		for _, name := range []string{"Ava", "Ben", "Cal", "Dee"} {
			p := model.Player{ID: id("player"), UserID: user, Name: name}
			So(s.CreatePlayer(ctx, p), ShouldBeNil)
			players = append(players, p)
		}
		home := model.Team{ID: id("team"), UserID: user, Name: "Home", PlayerIDs: []string{players[0].ID, players[1].ID}}
		away := model.Team{ID: id("team"), UserID: user, Name: "Away", PlayerIDs: []string{players[2].ID, players[3].ID}}
		So(s.CreateTeam(ctx, home), ShouldBeNil)
		So(s.CreateTeam(ctx, away), ShouldBeNil)

		match := model.Match{
			ID: id("match"), UserID: user, Name: "Friendly",
			TeamIDs: [2]string{home.ID, away.ID}, Overs: 2,
			CurPlayers: []model.CurPlayer{
				{ID: players[0].ID, Type: model.PlayerTypeBatsman},
				{ID: players[2].ID, Type: model.PlayerTypeBowler},
			},
			OnStrike:  players[0].ID,
			CreatedAt: now, UpdatedAt: now,
		}
		So(s.CreateMatch(ctx, match), ShouldBeNil)

		Convey("When reading players back", func() {
			all, err := s.ListPlayers(ctx, user, nil)
			some, err2 := s.ListPlayers(ctx, user, []string{players[3].ID, players[1].ID})
			other, err3 := s.ListPlayers(ctx, "someone-else", nil)

			Convey("Then they are scoped to the owner and filtered by id", func() {
				So(err, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(err3, ShouldBeNil)
				So(len(all), ShouldEqual, 4)
				So(all[0].Name, ShouldEqual, "Ava")
				So(len(some), ShouldEqual, 2)
				So(some[0].ID, ShouldEqual, players[3].ID)
				So(other, ShouldBeEmpty)
			})
		})

		Convey("When creating a player with an existing id", func() {
			err := s.CreatePlayer(ctx, players[0])

			Convey("Then it conflicts", func() {
				So(errors.Is(err, repository.ErrConflict), ShouldBeTrue)
			})
		})

		Convey("When updating a team", func() {
			home.Name = "Home XI"
			home.PlayerIDs = append(home.PlayerIDs, players[3].ID)
			So(s.UpdateTeam(ctx, home), ShouldBeNil)
			got, err := s.GetTeam(ctx, home.ID)

			Convey("Then the new roster is stored", func() {
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "Home XI")
				So(got.PlayerIDs, ShouldResemble, home.PlayerIDs)
			})
		})

		Convey("When the match is read back", func() {
			got, err := s.GetMatch(ctx, match.ID)
			list, err2 := s.ListMatches(ctx, user)

			Convey("Then its state round trips", func() {
				So(err, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(got.TeamIDs, ShouldResemble, match.TeamIDs)
				So(got.CurPlayers, ShouldResemble, match.CurPlayers)
				So(got.OnStrike, ShouldEqual, match.OnStrike)
				So(got.CreatedAt.Equal(now), ShouldBeTrue)
				So(len(list), ShouldEqual, 1)
			})
		})

		Convey("When events are appended and undone", func() {
			var evs []model.BallEvent
			for i, code := range []string{"1", "4", "-2"} {
				evs = append(evs, model.BallEvent{
					ID: id("ball"), MatchID: match.ID, Type: code,
					BatsmanID: players[0].ID, BowlerID: players[2].ID,
					Over: 0, Ball: i + 1, CreatedAt: now,
				})
			}
			match.OnStrike = players[1].ID
			So(s.AppendEvents(ctx, match, evs[:2]), ShouldBeNil)
			So(s.AppendEvents(ctx, match, evs[2:]), ShouldBeNil)

			undone, err := s.UndoLastEvent(ctx, match)
			left, err2 := s.ListEvents(ctx, match.ID)
			byPlayer, err3 := s.EventsByPlayer(ctx, players[2].ID)
			saved, _ := s.GetMatch(ctx, match.ID)

			Convey("Then order is kept and the most recent event is removed", func() {
				So(err, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(err3, ShouldBeNil)
				So(undone.ID, ShouldEqual, evs[2].ID)
				So(len(left), ShouldEqual, 2)
				So(left[0].Type, ShouldEqual, "1")
				So(left[1].Type, ShouldEqual, "4")
				So(len(byPlayer), ShouldEqual, 2)
				So(saved.OnStrike, ShouldEqual, players[1].ID)
			})

			Convey("Then a duplicate event id is refused", func() {
				err := s.AppendEvents(ctx, match, evs[:1])
				So(errors.Is(err, repository.ErrConflict), ShouldBeTrue)
			})
		})

		Convey("When the non-striker is run out", func() {
			ev := model.BallEvent{
				ID: id("ball"), MatchID: match.ID, Type: "-11",
				BatsmanID: players[0].ID, BowlerID: players[2].ID, DismissedID: players[1].ID,
				Ball: 1, CreatedAt: now,
			}
			So(s.AppendEvents(ctx, match, []model.BallEvent{ev}), ShouldBeNil)
			byPlayer, err := s.EventsByPlayer(ctx, players[1].ID)

			Convey("Then the dismissed batsman is stored and finds the event", func() {
				So(err, ShouldBeNil)
				So(byPlayer, ShouldHaveLength, 1)
				So(byPlayer[0].DismissedID, ShouldEqual, players[1].ID)
			})
		})

		Convey("When two matches store an event with the same id", func() {
			other := match
			other.ID = id("match")
			So(s.CreateMatch(ctx, other), ShouldBeNil)
			ballID := id("ball")
			ev := model.BallEvent{
				ID: ballID, MatchID: match.ID, Type: "4",
				BatsmanID: players[0].ID, BowlerID: players[2].ID,
				Ball: 1, CreatedAt: now,
			}
			err := s.AppendEvents(ctx, match, []model.BallEvent{ev})
			ev.MatchID, ev.Type = other.ID, "6"
			err2 := s.AppendEvents(ctx, other, []model.BallEvent{ev})

			Convey("Then each match keeps its own event", func() {
				So(err, ShouldBeNil)
				So(err2, ShouldBeNil)
				got, err := s.ListEvents(ctx, other.ID)
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 1)
				So(got[0].Type, ShouldEqual, "6")
			})
		})

		Convey("When undoing a match without events", func() {
			_, err := s.UndoLastEvent(ctx, match)

			Convey("Then nothing is found", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the match is deleted", func() {
			So(s.DeleteMatch(ctx, match.ID), ShouldBeNil)
			_, err := s.GetMatch(ctx, match.ID)
			_, err2 := s.ListEvents(ctx, match.ID)

			Convey("Then it and its events are gone", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				So(errors.Is(err2, repository.ErrNotFound), ShouldBeTrue)
				So(errors.Is(s.DeleteMatch(ctx, match.ID), repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When listing every player id", func() {
			ids, err := s.PlayerIDs(ctx)

			Convey("Then all players are included", func() {
				So(err, ShouldBeNil)
				for _, p := range players {
					So(ids, ShouldContain, p.ID)
				}
			})
		})

		Convey("When looking up unknown ids", func() {
			_, errP := s.GetPlayer(ctx, "missing")
			_, errT := s.GetTeam(ctx, "missing")
			errU := s.UpdateMatch(ctx, model.Match{ID: "missing"})

			Convey("Then ErrNotFound is returned", func() {
				for _, err := range []error{errP, errT, errU} {
					So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				}
			})
		})
	})
}
