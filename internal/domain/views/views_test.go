package views_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/okian/ballbyball/internal/domain/model"
	"github.com/okian/ballbyball/internal/domain/scoring"
	"github.com/okian/ballbyball/internal/domain/views"
	"github.com/smartystreets/goconvey/convey"
)

// ball is a compact event literal: innings, over, code, batsman, bowler.
func ball(match string, innings, over int, code, bat, bowl string) model.BallEvent {
	return model.BallEvent{MatchID: match, Innings: innings, Over: over, Type: code, BatsmanID: bat, BowlerID: bowl}
}

func numbered(es ...model.BallEvent) []model.BallEvent {
	for i := range es {
		es[i].ID = fmt.Sprintf("e%d", i)
	}
	return es
}

// twoOvers is a short first innings: A and B bat against X then Y.
func twoOvers() []model.BallEvent {
	return numbered(
		ball("m1", 0, 0, "1", "A", "X"),
		ball("m1", 0, 0, "4", "B", "X"),
		ball("m1", 0, 0, "-2", "B", "X"),
		ball("m1", 0, 0, "6", "B", "X"),
		ball("m1", 0, 0, "0", "B", "X"),
		ball("m1", 0, 0, "-4", "B", "X"),
		ball("m1", 0, 0, "2", "A", "X"),
		ball("m1", 0, 1, "-1", "B", "Y"),
		ball("m1", 0, 1, "-34", "A", "Y"),
		ball("m1", 0, 1, "1", "A", "Y"),
	)
}

func TestPlayerViews(t *testing.T) {
	convey.Convey("Given a short innings", t, func() {
		es := twoOvers()

		convey.Convey("When viewing batsman B", func() {
			f, err := views.Batsman(es, "B")

			convey.Convey("Then only deliveries B faced are folded", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(f.Runs, convey.ShouldEqual, 10)
				convey.So(f.BallsFaced, convey.ShouldEqual, 5)
				convey.So(f.Fours, convey.ShouldEqual, 1)
				convey.So(f.Sixes, convey.ShouldEqual, 1)
				convey.So(f.Dismissals, convey.ShouldEqual, 1)
				sr, _ := f.StrikeRate.Value()
				convey.So(sr, convey.ShouldEqual, 200.0)
			})
		})

		convey.Convey("When viewing bowler X", func() {
			f, err := views.Bowler(es, "X")

			convey.Convey("Then the bye is not charged", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(f.Runs, convey.ShouldEqual, 1+4+1+6+2)
				convey.So(f.LegalDeliveries, convey.ShouldEqual, 6)
				convey.So(f.Overs, convey.ShouldEqual, "1.0")
				eco, _ := f.RunRate.Value()
				convey.So(eco, convey.ShouldEqual, 14.0)
			})
		})

		convey.Convey("When viewing a player who has not played", func() {
			f, err := views.Batsman(es, "nobody")

			convey.Convey("Then the empty scope has unavailable rates", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(f.BallsFaced, convey.ShouldEqual, 0)
				convey.So(f.StrikeRate.Available(), convey.ShouldBeFalse)
			})
		})
	})
}

func TestInningsViews(t *testing.T) {
	convey.Convey("Given a short innings", t, func() {
		es := twoOvers()

		convey.Convey("Then the innings total counts every extra", func() {
			f, err := views.Innings(es, 0)
			convey.So(err, convey.ShouldBeNil)
			convey.So(f.Runs, convey.ShouldEqual, 1+4+1+6+0+1+2+0+5+1)
			convey.So(f.Extras, convey.ShouldEqual, 3)
			convey.So(f.Dismissals, convey.ShouldEqual, 1)
			convey.So(f.Overs, convey.ShouldEqual, "1.2")
		})

		convey.Convey("Then an over range restricts the fold", func() {
			f, err := views.OverRange(es, 0, 1, 1)
			convey.So(err, convey.ShouldBeNil)
			convey.So(f.Runs, convey.ShouldEqual, 6)
			convey.So(f.Deliveries, convey.ShouldEqual, 3)
		})

		convey.Convey("Then over summaries group the codes per over", func() {
			overs, err := views.OverSummaries(es, 0)
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(overs), convey.ShouldEqual, 2)
			convey.So(overs[0].Codes, convey.ShouldResemble, []string{"1", "4", "-2", "6", "0", "-4", "2"})
			convey.So(overs[0].Runs, convey.ShouldEqual, 15)
			convey.So(overs[0].Legal, convey.ShouldEqual, 6)
			convey.So(overs[1].BowlerID, convey.ShouldEqual, "Y")
			convey.So(overs[1].Wickets, convey.ShouldEqual, 1)
		})

		convey.Convey("Then the run rate is cumulative across overs", func() {
			rates, err := views.RunRateByOver(es, 0)
			convey.So(err, convey.ShouldBeNil)
			convey.So(rates[0].Cumulative, convey.ShouldEqual, 15)
			rr, _ := rates[0].RunRate.Value()
			convey.So(rr, convey.ShouldEqual, 15.0)
			convey.So(rates[1].Cumulative, convey.ShouldEqual, 21)
			rr, _ = rates[1].RunRate.Value()
			convey.So(rr, convey.ShouldEqual, 21.0/8*6)
		})

		convey.Convey("Then the second innings is empty", func() {
			overs, err := views.OverSummaries(es, 1)
			convey.So(err, convey.ShouldBeNil)
			convey.So(overs, convey.ShouldBeEmpty)
		})
	})
}

func TestWorm(t *testing.T) {
	convey.Convey("Given an innings with illegal deliveries", t, func() {
		es := numbered(
			ball("m1", 0, 0, "-2", "A", "X"),
			ball("m1", 0, 0, "1", "A", "X"),
			ball("m1", 0, 0, "-3", "B", "X"),
			ball("m1", 0, 0, "4", "B", "X"),
			ball("m1", 1, 0, "6", "C", "A"),
		)

		convey.Convey("When building the worm of the first innings", func() {
			points, err := views.Worm(es, 0)

			convey.Convey("Then the origin is kept and illegal runs land on the last legal ball", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(points, convey.ShouldResemble, []views.WormPoint{
					{Ball: 0, Runs: 0},
					{Ball: 0, Runs: 1},
					{Ball: 1, Runs: 3},
					{Ball: 2, Runs: 7},
				})
			})
		})

		convey.Convey("When the innings has not started", func() {
			points, err := views.Worm(nil, 1)

			convey.Convey("Then the worm is the origin only", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(points, convey.ShouldResemble, []views.WormPoint{{}})
			})
		})

		convey.Convey("When an event carries an unknown code", func() {
			_, err := views.Worm(numbered(ball("m1", 0, 0, "XX", "A", "X")), 0)

			convey.Convey("Then the worm fails", func() {
				convey.So(errors.Is(err, scoring.ErrInvalidEventKind), convey.ShouldBeTrue)
			})
		})
	})
}

func TestCareer(t *testing.T) {
	convey.Convey("Given a player across three matches", t, func() {
		var es []model.BallEvent
		// m1: 52 then out.
		for i := 0; i < 13; i++ {
			es = append(es, ball("m1", 0, i/6, "4", "P", "X"))
		}
		es = append(es, ball("m1", 0, 2, "-1", "P", "X"))
		// m2: 100 not out, and a spell with a wicket.
		for i := 0; i < 25; i++ {
			es = append(es, ball("m2", 1, i/6, "4", "P", "X"))
		}
		es = append(es, ball("m2", 0, 0, "-1", "Q", "P"), ball("m2", 0, 0, "-4", "Q", "P"))
		// m3: bowled only.
		es = append(es, ball("m3", 0, 0, "1", "Q", "P"))
		es = numbered(es...)

		stats, err := views.Career(es, "P")

		convey.Convey("Then innings and milestones are derived per match", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(stats.Matches, convey.ShouldEqual, 3)
			convey.So(stats.Batting.Innings, convey.ShouldEqual, 2)
			convey.So(stats.Batting.NotOuts, convey.ShouldEqual, 1)
			convey.So(stats.Batting.Runs, convey.ShouldEqual, 152)
			convey.So(stats.Batting.Fifties, convey.ShouldEqual, 1)
			convey.So(stats.Batting.Centuries, convey.ShouldEqual, 1)
			convey.So(stats.Batting.HighestScore, convey.ShouldEqual, 100)
		})

		convey.Convey("Then the average uses completed innings and carries the not-out marker", func() {
			avg, ok := stats.Batting.Average.Value.Value()
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(avg, convey.ShouldEqual, 152.0)
			convey.So(stats.Batting.Average.NotOut, convey.ShouldBeTrue)
		})

		convey.Convey("Then bowling figures exclude byes", func() {
			convey.So(stats.Bowling.Wickets, convey.ShouldEqual, 1)
			convey.So(stats.Bowling.Runs, convey.ShouldEqual, 1)
			convey.So(stats.Bowling.LegalDeliveries, convey.ShouldEqual, 3)
			eco, _ := stats.Bowling.Economy.Value()
			convey.So(eco, convey.ShouldAlmostEqual, 2.0, 1e-9)
		})
	})

	convey.Convey("Given a non-striker run out before facing a ball", t, func() {
		runOut := ball("m1", 0, 0, "-11", "S", "X")
		runOut.DismissedID = "N"
		es := numbered(ball("m1", 0, 0, "4", "S", "X"), runOut)

		striker, err := views.Career(es, "S")
		convey.So(err, convey.ShouldBeNil)
		nonStriker, err := views.Career(es, "N")
		convey.So(err, convey.ShouldBeNil)
		bowler, err := views.Career(es, "X")
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then the striker keeps the runs and stays not out", func() {
			convey.So(striker.Batting.Runs, convey.ShouldEqual, 5)
			convey.So(striker.Batting.NotOuts, convey.ShouldEqual, 1)
			convey.So(striker.Batting.Dismissals, convey.ShouldEqual, 0)
		})

		convey.Convey("Then the non-striker has a completed innings without a ball faced", func() {
			convey.So(nonStriker.Batting.Innings, convey.ShouldEqual, 1)
			convey.So(nonStriker.Batting.NotOuts, convey.ShouldEqual, 0)
			convey.So(nonStriker.Batting.Dismissals, convey.ShouldEqual, 1)
			convey.So(nonStriker.Batting.BallsFaced, convey.ShouldEqual, 0)
		})

		convey.Convey("Then the run out is not the bowler's wicket", func() {
			convey.So(bowler.Bowling.Wickets, convey.ShouldEqual, 0)
			convey.So(bowler.Bowling.Runs, convey.ShouldEqual, 5)
		})
	})

	convey.Convey("Given a player who never batted", t, func() {
		stats, err := views.Career(nil, "P")

		convey.Convey("Then the average is unavailable rather than zero", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(stats.Matches, convey.ShouldEqual, 0)
			convey.So(stats.Batting.Average.Value.Available(), convey.ShouldBeFalse)
		})
	})
}

func TestScorecard(t *testing.T) {
	convey.Convey("Given a match in its second innings", t, func() {
		match := model.Match{
			ID:      "m1",
			Name:    "Sunday league",
			TeamIDs: [2]string{"home", "away"},
			CurTeam: 1,
			Overs:   2,
			CurPlayers: []model.CurPlayer{
				{ID: "C", Type: model.PlayerTypeBatsman},
				{ID: "D", Type: model.PlayerTypeBatsman},
				{ID: "A", Type: model.PlayerTypeBowler},
			},
			OnStrike: "D",
		}
		es := append(twoOvers(),
			ball("m1", 1, 0, "4", "C", "A"),
			ball("m1", 1, 0, "-2", "C", "A"),
			ball("m1", 1, 0, "1", "C", "A"),
		)
		es = numbered(es...)

		card, err := views.Scorecard(match, es)

		convey.Convey("Then both innings totals are shown", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(card.Innings[0].TeamID, convey.ShouldEqual, "home")
			convey.So(card.Innings[0].Runs, convey.ShouldEqual, 21)
			convey.So(card.Innings[1].Runs, convey.ShouldEqual, 6)
			convey.So(card.Innings[1].Overs, convey.ShouldEqual, "0.2")
			convey.So(card.Events, convey.ShouldEqual, 13)
		})

		convey.Convey("Then the current batsmen and bowler come from this innings", func() {
			convey.So(len(card.Batsmen), convey.ShouldEqual, 2)
			convey.So(card.Batsmen[0].Runs, convey.ShouldEqual, 5)
			convey.So(card.Batsmen[0].Balls, convey.ShouldEqual, 2)
			convey.So(card.Batsmen[1].OnStrike, convey.ShouldBeTrue)
			convey.So(card.Batsmen[1].StrikeRate.Available(), convey.ShouldBeFalse)
			convey.So(card.Bowler.PlayerID, convey.ShouldEqual, "A")
			convey.So(card.Bowler.Runs, convey.ShouldEqual, 6)
			convey.So(card.ThisOver, convey.ShouldResemble, []string{"4", "-2", "1"})
		})

		convey.Convey("Then the chase shows a target and required rate", func() {
			convey.So(*card.Target, convey.ShouldEqual, 22)
			rrr, ok := card.RequiredRunRate.Value()
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(rrr, convey.ShouldAlmostEqual, 9.6, 1e-9)
		})
	})
}
