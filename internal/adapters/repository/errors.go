package repository

import "errors"

// Errors returned by every Store and Leaderboard implementation.
var (
	// ErrNotFound reports a missing player, team, match or event.
	ErrNotFound = errors.New("not found")
	// ErrConflict reports a duplicate id on insert.
	ErrConflict = errors.New("already exists")
	// ErrInvalidLimit reports a leaderboard limit below one.
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
)
