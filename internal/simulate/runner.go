package simulate

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/ballbyball/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	outputPermission    = 0640
)

// Run plays cfg.Matches matches and verifies every scorecard and the
// leaderboard. It returns the logs of the played matches.
func Run(ctx context.Context, cfg *Config) ([]MatchLog, *Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	if err := validate(cfg); err != nil {
		return nil, stats, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	log := logger.Get().Named("simulate")
	log.Info(ctx, "starting match simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("matches", cfg.Matches),
		logger.Int("overs", cfg.Overs),
		logger.Int("workers", cfg.Workers),
		logger.Any("seed", seed))

	client := NewClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout)
	if err := checkServiceHealth(ctx, client); err != nil {
		return nil, stats, fmt.Errorf("service health check failed: %w", err)
	}

	var (
		mu   sync.Mutex
		logs = make([]MatchLog, cfg.Matches)
		runs = make(map[string]int)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := range cfg.Matches {
		p := &player{
			cfg:   cfg,
			c:     client,
			gen:   NewGenerator(seed + uint64(i)),
			stats: stats,
			log:   log,
		}
		g.Go(func() error {
			ml, r, err := p.playMatch(gctx, i+1, cfg.Watch && i == 0)
			if err != nil {
				return fmt.Errorf("match %d: %w", i+1, err)
			}
			mu.Lock()
			defer mu.Unlock()
			logs[i] = ml
			for id, n := range r {
				runs[id] += n
			}
			log.Info(gctx, "match verified",
				logger.Int("n", i+1),
				logger.String("match_id", ml.MatchID),
				logger.Int("balls", len(ml.Innings[0].Codes)+len(ml.Innings[1].Codes)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stats, err
	}

	if err := verifyLeaderboard(ctx, client, runs); err != nil {
		return logs, stats, err
	}
	log.Info(ctx, "leaderboard verified", logger.Int("players", len(runs)))

	if cfg.OutputFile != "" {
		if err := saveMatches(cfg.OutputFile, logs); err != nil {
			log.Warn(ctx, "failed to save matches to file", logger.Error(err))
		}
	}

	stats.Duration = time.Since(stats.StartTime)
	displayFinalStats(ctx, stats)
	return logs, stats, nil
}

func validate(cfg *Config) error {
	switch {
	case cfg.Matches < 1:
		return fmt.Errorf("matches must be positive")
	case cfg.Overs < 1:
		return fmt.Errorf("overs must be positive")
	case cfg.TeamSize < minTeamSize:
		return fmt.Errorf("teams need at least %d players", minTeamSize)
	case cfg.Workers < 1:
		return fmt.Errorf("workers must be positive")
	}
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, c *Client) error {
	status, err := c.Do(ctx, http.MethodGet, "/healthz", nil, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", status)
	}
	return nil
}

// saveMatches writes the played deliveries as JSON.
func saveMatches(filename string, logs []MatchLog) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	raw, err := json.MarshalIndent(logs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, raw, outputPermission)
}

// displayFinalStats logs the run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var failRate, ballsPerSecond float64
	submitted := stats.BallsSubmitted.Load()
	if total := submitted + stats.BallsFailed.Load(); total > 0 {
		failRate = float64(stats.BallsFailed.Load()) / float64(total) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		ballsPerSecond = float64(submitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("matchesPlayed", int(stats.MatchesPlayed.Load())),
		logger.Int("matchesVerified", int(stats.MatchesVerified.Load())),
		logger.Int("ballsSubmitted", int(submitted)),
		logger.Int("ballsDuplicate", int(stats.BallsDuplicate.Load())),
		logger.Int("ballsFailed", int(stats.BallsFailed.Load())),
		logger.Int("liveMessages", int(stats.LiveMessages.Load())),
		logger.Duration("duration", stats.Duration),
		logger.Float64("failRate", failRate),
		logger.Float64("ballsPerSecond", ballsPerSecond))
}
