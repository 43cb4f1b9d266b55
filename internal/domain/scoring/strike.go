package scoring

// Position is the over and ball-in-over of the next delivery of an innings.
type Position struct {
	Over int `json:"over"`
	Ball int `json:"ball"`
	// Legal counts legal deliveries bowled so far.
	Legal int `json:"legal"`
}

// NextPosition returns where the next delivery falls given the deliveries
// already bowled in the innings. Illegal deliveries keep the ball number.
func NextPosition(bowled []Delivery) Position {
	legal := 0
	for _, d := range bowled {
		if d.IsLegal() {
			legal++
		}
	}
	return Position{
		Over:  legal / BallsPerOver,
		Ball:  legal%BallsPerOver + 1,
		Legal: legal,
	}
}

// OverComplete reports whether d, bowled at p, finished the over.
func OverComplete(p Position, d Delivery) bool {
	return d.IsLegal() && p.Ball == BallsPerOver
}

// NextStrike returns who faces the next ball. The batsmen change ends on an
// odd number of runs completed, and again at the end of an over.
func NextStrike(onStrike, nonStriker string, d Delivery, overComplete bool) string {
	if nonStriker == "" {
		return onStrike
	}
	swap := d.Ran()%2 == 1
	if overComplete {
		swap = !swap
	}
	if swap {
		return nonStriker
	}
	return onStrike
}

// InningsComplete reports whether legal deliveries exhaust an overs limit.
func InningsComplete(legal, overs int) bool {
	return overs > 0 && legal >= overs*BallsPerOver
}
