package repository

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/okian/ballbyball/internal/domain/types"
	"github.com/okian/ballbyball/pkg/metrics"
)

// Treap-based, in-memory Leaderboard implementation.
//
// Ordering: runs DESC, then playerID ASC (deterministic).
// "less" means ranks earlier, so in-order traversal produces the
// leaderboard from best to worst. Each node tracks its subtree size,
// which makes Rank O(log n) expected.

type node struct {
	id    string
	runs  int
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aRuns, aID) should appear before (bRuns, bID).
func less(aRuns int, aID string, bRuns int, bID string) bool {
	if aRuns != bRuns {
		return aRuns > bRuns
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, nn *node) *node {
	if n == nil {
		return nn
	}
	if less(nn.runs, nn.id, n.runs, n.id) {
		n.left = insert(n.left, nn)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, nn)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, runs int) *node {
	if n == nil {
		return nil
	}
	switch {
	case runs == n.runs && id == n.id:
		// Rotate the higher priority child up until the node is a leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, runs)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, runs)
		}
	case less(runs, id, n.runs, n.id):
		n.left = deleteNode(n.left, id, runs)
	default:
		n.right = deleteNode(n.right, id, runs)
	}
	fix(n)
	return n
}

// countAbove returns how many players have strictly more runs than runs.
func countAbove(n *node, runs int) int {
	count := 0
	for n != nil {
		if n.runs > runs {
			count += nsize(n.left) + 1
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

// collectTopN appends up to limit entries in rank order.
func collectTopN(n *node, limit int, out *[]types.Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, types.Entry{PlayerID: n.id, Runs: n.runs})
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// TreapLeaderboard is an order-statistics treap of career runs.
type TreapLeaderboard struct {
	mu   sync.RWMutex
	root *node
	byID map[string]int
	seed uint64
	rng  *rand.Rand
}

// NewTreapLeaderboard constructs an empty leaderboard with configuration options.
func NewTreapLeaderboard(opts ...Option) *TreapLeaderboard {
	s := &TreapLeaderboard{
		byID: make(map[string]int),
		seed: uint64(time.Now().UnixNano()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rng = rand.New(rand.NewPCG(s.seed, s.seed>>1|1))
	return s
}

// Set implements Leaderboard.Set with O(log n) expected time.
func (s *TreapLeaderboard) Set(_ context.Context, playerID string, runs int) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryLatency("leaderboard_set", float64(time.Since(start).Microseconds())/1000)
	}()

	s.mu.Lock()
	if old, ok := s.byID[playerID]; ok {
		if old == runs {
			s.mu.Unlock()
			return false, nil
		}
		s.root = deleteNode(s.root, playerID, old)
	}
	s.byID[playerID] = runs
	s.root = insert(s.root, &node{id: playerID, runs: runs, prio: s.rng.Uint64(), size: 1})
	count := len(s.byID)
	s.mu.Unlock()

	metrics.RecordLeaderboardUpdate()
	metrics.UpdateRankedPlayers(count)
	return true, nil
}

// Rank returns the competition rank of a player: one plus the number of
// players with more runs, so tied players share a rank.
func (s *TreapLeaderboard) Rank(_ context.Context, playerID string) (types.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs, ok := s.byID[playerID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return types.Entry{}, ErrNotFound
	}
	return types.Entry{Rank: countAbove(s.root, runs) + 1, PlayerID: playerID, Runs: runs}, nil
}

// TopN returns the top N entries ordered by runs desc.
func (s *TreapLeaderboard) TopN(_ context.Context, n int) ([]types.Entry, error) {
	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Entry, 0, min(n, len(s.byID)))
	collectTopN(s.root, n, &out)
	for i := range out {
		if i > 0 && out[i].Runs == out[i-1].Runs {
			out[i].Rank = out[i-1].Rank
			continue
		}
		out[i].Rank = i + 1
	}
	return out, nil
}

// Count returns the total number of ranked players.
func (s *TreapLeaderboard) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
