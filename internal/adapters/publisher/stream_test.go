package publisher

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/ballbyball/internal/domain/model"
	"github.com/okian/ballbyball/internal/domain/views"
)

func TestStreamValues(t *testing.T) {
	Convey("Given a scorecard", t, func() {
		sc := views.ScorecardView{MatchID: "m1", Name: "final", Events: 3, ThisOver: []string{"1"}}

		Convey("The stream entry carries the id, the reason and the JSON body", func() {
			v, err := streamValues(model.UpdateAppended, sc)
			So(err, ShouldBeNil)
			So(v["match_id"], ShouldEqual, "m1")
			So(v["reason"], ShouldEqual, model.UpdateAppended)
			So(v["ended"], ShouldEqual, false)

			var back views.ScorecardView
			So(json.Unmarshal([]byte(v["data"].(string)), &back), ShouldBeNil)
			So(back.Name, ShouldEqual, "final")
			So(back.Events, ShouldEqual, 3)
		})
	})
}

func TestStreamPublisherOptions(t *testing.T) {
	Convey("Options override the stream key and trimming", t, func() {
		p := NewStreamPublisher(nil, WithStream("custom"), WithMaxLen(0))
		So(p.Stream(), ShouldEqual, "custom")
		So(p.maxLen, ShouldEqual, 0)

		p = NewStreamPublisher(nil, WithStream(""))
		So(p.Stream(), ShouldEqual, DefaultStream)
		So(p.maxLen, ShouldEqual, defaultMaxLen)
	})
}

func TestNop(t *testing.T) {
	Convey("Nop accepts every update", t, func() {
		So(Nop{}.Publish(context.Background(), model.UpdateUndone, views.ScorecardView{}), ShouldBeNil)
	})
}

func TestStreamPublisherRedis(t *testing.T) {
	addr := os.Getenv("BALLBYBALL_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("BALLBYBALL_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	ctx := context.Background()

	Convey("Given a publisher on a fresh stream", t, func() {
		stream := "ballbyball-test-" + uuid.NewString()
		defer client.Del(ctx, stream)
		p := NewStreamPublisher(client, WithStream(stream))

		Convey("Published updates are appended in order", func() {
			So(p.Publish(ctx, model.UpdateAppended, views.ScorecardView{MatchID: "a"}), ShouldBeNil)
			So(p.Publish(ctx, model.UpdateUndone, views.ScorecardView{MatchID: "a"}), ShouldBeNil)

			msgs, err := client.XRange(ctx, stream, "-", "+").Result()
			So(err, ShouldBeNil)
			So(msgs, ShouldHaveLength, 2)
			So(msgs[0].Values["reason"], ShouldEqual, model.UpdateAppended)
			So(msgs[1].Values["reason"], ShouldEqual, model.UpdateUndone)
		})
	})
}
