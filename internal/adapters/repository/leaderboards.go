package repository

import (
	"context"
	"sync"
)

// UserLeaderboards keeps a separate leaderboard for each user, so a user
// only ranks against their own players.
type UserLeaderboards struct {
	mu       sync.RWMutex
	boards   map[string]Leaderboard
	newBoard func() Leaderboard
}

// NewUserLeaderboards builds boards with newBoard on first use. A nil
// newBoard builds treaps.
func NewUserLeaderboards(newBoard func() Leaderboard) *UserLeaderboards {
	if newBoard == nil {
		newBoard = func() Leaderboard { return NewTreapLeaderboard() }
	}
	return &UserLeaderboards{
		boards:   make(map[string]Leaderboard),
		newBoard: newBoard,
	}
}

// For returns the board of userID, creating it if needed.
func (u *UserLeaderboards) For(userID string) Leaderboard {
	if lb, ok := u.Lookup(userID); ok {
		return lb
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if lb, ok := u.boards[userID]; ok {
		return lb
	}
	lb := u.newBoard()
	u.boards[userID] = lb
	return lb
}

// Lookup returns the board of userID if one exists.
func (u *UserLeaderboards) Lookup(userID string) (Leaderboard, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	lb, ok := u.boards[userID]
	return lb, ok
}

// Count returns the number of ranked players across all users.
func (u *UserLeaderboards) Count(ctx context.Context) int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	total := 0
	for _, lb := range u.boards {
		total += lb.Count(ctx)
	}
	return total
}
