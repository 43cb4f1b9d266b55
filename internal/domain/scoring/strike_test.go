package scoring_test

import (
	"testing"

	"github.com/okian/ballbyball/internal/domain/scoring"
	"github.com/smartystreets/goconvey/convey"
)

func parse(codes ...string) []scoring.Delivery {
	out := make([]scoring.Delivery, len(codes))
	for i, c := range codes {
		d, err := scoring.ParseCode(c)
		if err != nil {
			panic(err)
		}
		out[i] = d
	}
	return out
}

func TestNextPosition(t *testing.T) {
	convey.Convey("Given deliveries already bowled", t, func() {
		convey.Convey("Then an empty innings starts at over 0 ball 1", func() {
			convey.So(scoring.NextPosition(nil), convey.ShouldResemble, scoring.Position{Over: 0, Ball: 1})
		})

		convey.Convey("Then illegal deliveries do not advance the ball number", func() {
			p := scoring.NextPosition(parse("1", "-2", "-3", "0"))
			convey.So(p, convey.ShouldResemble, scoring.Position{Over: 0, Ball: 3, Legal: 2})
		})

		convey.Convey("Then six legal balls roll over to the next over", func() {
			p := scoring.NextPosition(parse("1", "1", "1", "1", "1", "-2", "1"))
			convey.So(p, convey.ShouldResemble, scoring.Position{Over: 1, Ball: 1, Legal: 6})
		})
	})
}

func TestNextStrike(t *testing.T) {
	convey.Convey("Given two batsmen A on strike and B", t, func() {
		next := func(code string, overComplete bool) string {
			return scoring.NextStrike("A", "B", parse(code)[0], overComplete)
		}

		convey.Convey("Then odd runs change ends", func() {
			convey.So(next("1", false), convey.ShouldEqual, "B")
			convey.So(next("3", false), convey.ShouldEqual, "B")
			convey.So(next("-41", false), convey.ShouldEqual, "B")
			convey.So(next("-4", false), convey.ShouldEqual, "B")
			convey.So(next("-31", false), convey.ShouldEqual, "B")
		})

		convey.Convey("Then even runs and boundaries keep the striker", func() {
			convey.So(next("2", false), convey.ShouldEqual, "A")
			convey.So(next("4", false), convey.ShouldEqual, "A")
			convey.So(next("-2", false), convey.ShouldEqual, "A")
			convey.So(next("-8", false), convey.ShouldEqual, "A")
		})

		convey.Convey("Then the end of an over swaps again", func() {
			convey.So(next("0", true), convey.ShouldEqual, "B")
			convey.So(next("1", true), convey.ShouldEqual, "A")
		})

		convey.Convey("Then a lone batsman always keeps strike", func() {
			convey.So(scoring.NextStrike("A", "", parse("1")[0], true), convey.ShouldEqual, "A")
		})
	})

	convey.Convey("Given an overs limit", t, func() {
		convey.Convey("Then the innings completes once all legal balls are bowled", func() {
			convey.So(scoring.InningsComplete(11, 2), convey.ShouldBeFalse)
			convey.So(scoring.InningsComplete(12, 2), convey.ShouldBeTrue)
			convey.So(scoring.InningsComplete(100, 0), convey.ShouldBeFalse)
		})

		convey.Convey("Then only a legal sixth ball completes the over", func() {
			p := scoring.Position{Over: 0, Ball: 6}
			convey.So(scoring.OverComplete(p, parse("0")[0]), convey.ShouldBeTrue)
			convey.So(scoring.OverComplete(p, parse("-2")[0]), convey.ShouldBeFalse)
		})
	})
}
