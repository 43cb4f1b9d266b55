package simulate

import (
	"testing"

	"github.com/okian/ballbyball/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerator(t *testing.T) {
	Convey("Given two generators with the same seed", t, func() {
		a, b := NewGenerator(7), NewGenerator(7)

		Convey("Then they draw the same codes", func() {
			for range 200 {
				So(a.Next(), ShouldEqual, b.Next())
			}
		})
	})

	Convey("Given the delivery mix", t, func() {
		Convey("Then every code is a valid delivery", func() {
			for _, c := range deliveryMix {
				_, err := scoring.ParseCode(c.code)
				So(err, ShouldBeNil)
				So(c.weight, ShouldBeGreaterThan, 0)
			}
		})

		Convey("And a long draw is mostly legal deliveries", func() {
			g := NewGenerator(1)
			legal := 0
			for range 1000 {
				d, err := scoring.ParseCode(g.Next())
				So(err, ShouldBeNil)
				if d.IsLegal() {
					legal++
				}
			}
			So(legal, ShouldBeGreaterThan, 800)
		})
	})

	Convey("Given a zero probability", t, func() {
		g := NewGenerator(3)
		Convey("Then Chance never fires", func() {
			for range 100 {
				So(g.Chance(0), ShouldBeFalse)
			}
		})
	})
}

func TestExpectedCard(t *testing.T) {
	Convey("Given an innings log", t, func() {
		in := InningsLog{TeamID: "t", Codes: []string{"1", "4", "-2", "6", "0", "-1", "2"}}

		Convey("Then the local tally matches a hand count", func() {
			card, err := expectedCard(in)
			So(err, ShouldBeNil)
			So(card.Runs, ShouldEqual, 14)
			So(card.Wickets, ShouldEqual, 1)
			So(card.Overs, ShouldEqual, "1.0")
			So(card.Extras, ShouldEqual, 1)
		})

		Convey("And compareCard names the first difference", func() {
			card, err := expectedCard(in)
			So(err, ShouldBeNil)
			So(compareCard(0, card, card), ShouldBeNil)

			other := card
			other.Runs++
			So(compareCard(0, other, card).Error(), ShouldContainSubstring, "runs 15, want 14")
		})
	})
}
