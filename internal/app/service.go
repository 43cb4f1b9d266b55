// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/ballbyball/internal/adapters/cache"
	"github.com/okian/ballbyball/internal/adapters/http/live"
	eventqueue "github.com/okian/ballbyball/internal/adapters/mq/queue"
	workerpool "github.com/okian/ballbyball/internal/adapters/mq/worker"
	"github.com/okian/ballbyball/internal/adapters/publisher"
	"github.com/okian/ballbyball/internal/adapters/repository"
	"github.com/okian/ballbyball/internal/domain/dedupe"
	"github.com/okian/ballbyball/pkg/logger"
	"github.com/okian/ballbyball/pkg/metrics"
)

// Defaults used when no option overrides them.
const (
	defaultQueueSize  = 10_000
	defaultDedupeSize = 100_000
	defaultOvers      = 20
	defaultMaxOvers   = 50
)

// Broadcaster pushes live messages to match subscribers.
type Broadcaster interface {
	Broadcast(msg live.Message) bool
}

// Service implements the API dependencies for the scoring system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store       repository.Store
	leaderboards *repository.UserLeaderboards
	newBoard     func() repository.Leaderboard
	scorecards  cache.Scorecards
	publisher   publisher.Publisher
	broadcaster Broadcaster
	deduper     dedupe.Deduper
	queue       eventqueue.Queue
	workerPool  *workerpool.Pool

	// matchLocks serialises writes per match id.
	matchLocks sync.Map

	// Configuration
	workerCount  int
	queueSize    int
	dedupeSize   int
	defaultOvers int
	maxOvers     int

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of refresh workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the refresh queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many event ids are remembered for idempotency.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithOvers sets the default and maximum overs of a match.
func WithOvers(def, maxOvers int) Option {
	return func(s *Service) {
		if maxOvers > 0 {
			s.maxOvers = maxOvers
		}
		if def > 0 && def <= s.maxOvers {
			s.defaultOvers = def
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the persistence backend. Defaults to an in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithLeaderboard sets how each user's runs leaderboard is built. Defaults to a treap.
func WithLeaderboard(newBoard func() repository.Leaderboard) Option {
	return func(s *Service) {
		s.newBoard = newBoard
	}
}

// WithScorecards sets the scorecard cache. Defaults to an in-memory cache.
func WithScorecards(c cache.Scorecards) Option {
	return func(s *Service) {
		s.scorecards = c
	}
}

// WithPublisher sets where match updates are published.
func WithPublisher(p publisher.Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithBroadcaster sets the live subscriber hub.
func WithBroadcaster(b Broadcaster) Option {
	return func(s *Service) {
		s.broadcaster = b
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  runtime.NumCPU(),
		queueSize:    defaultQueueSize,
		dedupeSize:   defaultDedupeSize,
		defaultOvers: defaultOvers,
		maxOvers:     defaultMaxOvers,
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the components and starts the refresh workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting scoring service...")

	if s.store == nil {
		s.store = repository.NewMemoryStore()
		s.logger.Info(ctx, "using in-memory store")
	}
	if s.leaderboards == nil {
		s.leaderboards = repository.NewUserLeaderboards(s.newBoard)
	}
	if s.scorecards == nil {
		s.scorecards = cache.NewMemoryScorecards()
	}
	if s.publisher == nil {
		s.publisher = publisher.Nop{}
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))

	if err := s.warmLeaderboard(ctx); err != nil {
		return fmt.Errorf("warming leaderboard: %w", err)
	}

	s.workerPool = workerpool.NewPool(s.workerCount, s.queue, s)
	s.workerPool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "scoring service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("rankedPlayers", s.leaderboards.Count(ctx)),
	)
	return nil
}

// Stop drains the refresh queue and stops the workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping scoring service...")

	if s.workerPool != nil {
		if err := s.workerPool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "scoring service stopped")
}

// Ping checks the backing store.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.store.Ping(ctx)
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// lockMatch serialises writers of one match and returns the unlock func.
func (s *Service) lockMatch(matchID string) func() {
	v, _ := s.matchLocks.LoadOrStore(matchID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// warmLeaderboard loads career runs of every stored player.
func (s *Service) warmLeaderboard(ctx context.Context) error {
	ids, err := s.store.PlayerIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.rankPlayer(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		ranked := s.leaderboards.Count(ctx)

		stats["queueLength"] = queueLen
		stats["rankedPlayers"] = ranked
		stats["seenEvents"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateRankedPlayers(ranked)
		metrics.UpdateWorkerCount(s.workerPool.Size())
	}

	return stats
}

func (s *Service) now() time.Time { return time.Now().UTC() }
