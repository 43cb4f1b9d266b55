// Package scoring folds ball events into cricket statistics.
//
// Everything here is pure: functions take an in-memory event sequence and
// return values without I/O or shared state, so they are safe to call from
// any goroutine.
package scoring

import (
	"fmt"
)

// Kind classifies one delivery outcome.
// The runs kinds are numbered so that int(k) is the runs they score.
type Kind int

const (
	KindDot Kind = iota
	KindOne
	KindTwo
	KindThree
	KindFour
	KindFive
	KindSix
	KindWicket
	KindWide
	KindNoBall
	KindBye
	KindLegBye
	KindRetired
	KindShortRun
	KindDeadBall
	KindVoidBall
)

var kindNames = [...]string{
	KindDot:      "dot",
	KindOne:      "1",
	KindTwo:      "2",
	KindThree:    "3",
	KindFour:     "4",
	KindFive:     "5",
	KindSix:      "6",
	KindWicket:   "wicket",
	KindWide:     "wide",
	KindNoBall:   "no-ball",
	KindBye:      "bye",
	KindLegBye:   "leg-bye",
	KindRetired:  "retired",
	KindShortRun: "short-run",
	KindDeadBall: "dead-ball",
	KindVoidBall: "void-ball",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// IsRuns reports whether k is one of the plain runs kinds 0..6.
func (k Kind) IsRuns() bool {
	return k >= KindDot && k <= KindSix
}

// Boundary is the boundary classification of a delivery.
type Boundary int

const (
	BoundaryNone Boundary = iota
	BoundaryFour
	BoundarySix
)

// Negative code prefixes. A single trailing digit carries explicit runs.
var negativeKinds = map[byte]Kind{
	'1': KindWicket,
	'2': KindWide,
	'3': KindNoBall,
	'4': KindBye,
	'5': KindLegBye,
	'6': KindRetired,
	'7': KindShortRun,
	'8': KindDeadBall,
	'9': KindVoidBall,
}

// Delivery is a parsed outcome code.
type Delivery struct {
	Code string
	Kind Kind
	// Runs is the explicit run count of a compound code such as "-24".
	Runs int
	// Explicit is set when the code carried a run suffix.
	Explicit bool
}

// ParseCode classifies a raw outcome code.
// Unknown codes fail with ErrInvalidEventKind; they are never read as a dot ball.
func ParseCode(code string) (Delivery, error) {
	switch {
	case len(code) == 1 && code[0] >= '0' && code[0] <= '6':
		return Delivery{Code: code, Kind: Kind(code[0] - '0')}, nil

	case (len(code) == 2 || len(code) == 3) && code[0] == '-':
		kind, ok := negativeKinds[code[1]]
		if !ok {
			break
		}
		d := Delivery{Code: code, Kind: kind}
		if len(code) == 2 {
			return d, nil
		}
		if !acceptsRuns(kind) || code[2] < '0' || code[2] > '9' {
			break
		}
		d.Runs = int(code[2] - '0')
		d.Explicit = true
		return d, nil
	}
	return Delivery{}, fmt.Errorf("%w: %q", ErrInvalidEventKind, code)
}

func acceptsRuns(k Kind) bool {
	switch k {
	case KindWicket, KindWide, KindNoBall, KindBye, KindLegBye:
		return true
	}
	return false
}

// IsLegalDelivery reports whether k counts toward the six balls of an over
// and toward a batsman's balls faced.
func IsLegalDelivery(k Kind) bool {
	switch k {
	case KindWide, KindNoBall, KindDeadBall, KindVoidBall:
		return false
	}
	return true
}

// RunsOffBat returns the runs credited to the batsman.
// Fixed runs kinds score their value; no-balls and wickets score explicitRuns.
func RunsOffBat(k Kind, explicitRuns int) int {
	switch {
	case k.IsRuns():
		return int(k)
	case k == KindNoBall, k == KindWicket:
		return explicitRuns
	}
	return 0
}

// BoundaryOf classifies k as a four, a six or neither.
// Only the plain "4" and "6" codes are boundaries.
func BoundaryOf(k Kind) Boundary {
	switch k {
	case KindFour:
		return BoundaryFour
	case KindSix:
		return BoundarySix
	}
	return BoundaryNone
}

// IsLegal reports whether the delivery is legal.
func (d Delivery) IsLegal() bool { return IsLegalDelivery(d.Kind) }

// BatRuns returns the runs credited to the batsman.
func (d Delivery) BatRuns() int { return RunsOffBat(d.Kind, d.Runs) }

// Boundary returns the boundary classification.
func (d Delivery) Boundary() Boundary { return BoundaryOf(d.Kind) }

// IsWicket reports whether the delivery dismissed a batsman.
func (d Delivery) IsWicket() bool { return d.Kind == KindWicket }

// IsRunOut reports a wicket coded with completed runs, as in "-1N".
func (d Delivery) IsRunOut() bool { return d.IsWicket() && d.Explicit }

// BowlerWicket reports whether the wicket is credited to the bowler.
func (d Delivery) BowlerWicket() bool { return d.IsWicket() && !d.IsRunOut() }

// Extras returns the runs credited to the team but not the batsman.
func (d Delivery) Extras() int {
	switch d.Kind {
	case KindWide:
		return 1 + d.Runs
	case KindNoBall:
		return 1
	case KindBye, KindLegBye:
		if d.Explicit {
			return d.Runs
		}
		return 1
	}
	return 0
}

// TeamRuns returns everything the delivery added to the team total.
func (d Delivery) TeamRuns() int { return d.BatRuns() + d.Extras() }

// Conceded returns the runs charged to the bowler: byes and leg-byes are excluded.
func (d Delivery) Conceded() int {
	if d.Kind == KindBye || d.Kind == KindLegBye {
		return 0
	}
	return d.TeamRuns()
}

// Ran returns the runs physically completed between the wickets,
// which decides whether the batsmen changed ends.
func (d Delivery) Ran() int {
	switch d.Kind {
	case KindFour, KindSix:
		return 0
	case KindWide:
		return d.Runs
	case KindBye, KindLegBye:
		return d.Extras()
	}
	return d.BatRuns()
}
