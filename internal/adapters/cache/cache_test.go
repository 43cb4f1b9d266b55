package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/ballbyball/internal/domain/scoring"
	"github.com/okian/ballbyball/internal/domain/views"
)

func sampleCard(id string) views.ScorecardView {
	return views.ScorecardView{
		MatchID:  id,
		Name:     "Sunday league",
		Overs:    20,
		Batsmen:  []views.BatsmanCard{{PlayerID: "p1", OnStrike: true, Runs: 11, Balls: 4, StrikeRate: scoring.NewRate(11, 4, 100)}},
		ThisOver: []string{"1", "4"},
		Events:   2,
	}
}

func scorecardsContract(c Scorecards) {
	ctx := context.Background()
	id := uuid.NewString()

	Convey("A missing match is a miss", func() {
		_, err := c.Get(ctx, id)
		So(err, ShouldEqual, ErrMiss)
	})

	Convey("A stored scorecard is returned", func() {
		So(c.Put(ctx, sampleCard(id)), ShouldBeNil)
		got, err := c.Get(ctx, id)
		So(err, ShouldBeNil)
		So(got.MatchID, ShouldEqual, id)
		So(got.Batsmen, ShouldHaveLength, 1)
		sr, ok := got.Batsmen[0].StrikeRate.Value()
		So(ok, ShouldBeTrue)
		So(sr, ShouldEqual, 275)
		So(got.ThisOver, ShouldResemble, []string{"1", "4"})

		Convey("and can be deleted", func() {
			So(c.Delete(ctx, id), ShouldBeNil)
			_, err := c.Get(ctx, id)
			So(err, ShouldEqual, ErrMiss)
		})
	})
}

func TestMemoryScorecards(t *testing.T) {
	Convey("Given an in-memory scorecard cache", t, func() {
		scorecardsContract(NewMemoryScorecards())
	})
}

func TestRedisScorecards(t *testing.T) {
	addr := os.Getenv("BALLBYBALL_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("BALLBYBALL_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	Convey("Given a Redis scorecard cache", t, func() {
		scorecardsContract(NewRedisScorecards(client, WithKeyPrefix("ballbyball-test")))
	})
}

func TestRedisScorecardsKeys(t *testing.T) {
	Convey("Given a Redis scorecard cache with custom options", t, func() {
		c := NewRedisScorecards(nil,
			WithKeyPrefix("x"),
			WithLiveTTL(time.Minute),
			WithEndedTTL(time.Hour),
			WithLiveTTL(0),
		)

		Convey("Keys are namespaced per match", func() {
			So(c.key("m1"), ShouldEqual, "x:match:m1:scorecard")
		})

		Convey("Finished matches are kept longer", func() {
			sc := sampleCard("m1")
			So(c.ttlFor(sc), ShouldEqual, time.Minute)
			sc.HasEnded = true
			So(c.ttlFor(sc), ShouldEqual, time.Hour)
		})
	})
}
