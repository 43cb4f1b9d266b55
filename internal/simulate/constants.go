package simulate

import "time"

// Defaults applied by the CLI.
const (
	DefaultOvers    = 5
	DefaultTeamSize = 11
	DefaultMatches  = 4
	DefaultTimeout  = 10 * time.Second
)

// Runner configuration constants.
const (
	settleTimeout        = 10 * time.Second
	settlePoll           = 50 * time.Millisecond
	bowlersPerSide       = 5
	minTeamSize          = 3
	PercentageMultiplier = 100
)
