package scoring

import (
	"fmt"
)

// Average is a batting average over completed innings.
type Average struct {
	Value Rate `json:"value"`
	// NotOut marks a player who was not dismissed in every innings ("*").
	NotOut bool `json:"notOut"`
}

// BattingAverage divides runs by completed (dismissed) innings.
// The completed count is not derivable from one event sequence and must be
// supplied; nil fails fast rather than assuming zero.
func BattingAverage(runs, innings int, completed *int) (Average, error) {
	if completed == nil {
		return Average{}, ErrMissingCompletedInnings
	}
	c := *completed
	if c < 0 || c > innings {
		return Average{}, fmt.Errorf("%w: %d of %d", ErrInvalidCompletedInnings, c, innings)
	}
	return Average{
		Value:  NewRate(float64(runs), float64(c), 1),
		NotOut: c < innings,
	}, nil
}
