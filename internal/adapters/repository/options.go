package repository

// Option applies a configuration option to the TreapLeaderboard.
type Option func(*TreapLeaderboard)

// WithPrioritySeed fixes the seed of the treap priorities, for reproducible shapes.
func WithPrioritySeed(seed uint64) Option {
	return func(s *TreapLeaderboard) {
		s.seed = seed
	}
}
