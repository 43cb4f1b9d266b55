package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/okian/ballbyball/internal/adapters/cache"
	"github.com/okian/ballbyball/internal/adapters/http/api"
	"github.com/okian/ballbyball/internal/adapters/http/live"
	"github.com/okian/ballbyball/internal/adapters/http/swagger"
	"github.com/okian/ballbyball/internal/adapters/publisher"
	"github.com/okian/ballbyball/internal/adapters/repository"
	app "github.com/okian/ballbyball/internal/app"
	"github.com/okian/ballbyball/internal/config"
	"github.com/okian/ballbyball/pkg/logger"
	"github.com/okian/ballbyball/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use fmt for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Configure(metrics.WithConstLabels(cfg.MetricsLabels))

	a, err := setup(ctx, cfg)
	if err != nil {
		loggerInstance.Error(ctx, "failed to start", logger.Error(err))
		os.Exit(1)
	}
	defer a.close()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// Start service metrics updater
	go startServiceMetricsUpdater(ctx, a.svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           a.handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// application holds the wired components of a running process.
type application struct {
	svc     *app.Service
	hub     *live.Hub
	handler http.Handler
	closers []func()
}

// close releases components in reverse order of creation.
func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// setup builds the store, cache, live hub, service and routes from cfg.
func setup(ctx context.Context, cfg *config.Config) (*application, error) {
	log := logger.Get()
	a := &application{}

	opts := []app.Option{
		app.WithLogger(log.Named("service")),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.RefreshQueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithOvers(cfg.DefaultOvers, cfg.MaxOvers),
	}

	if cfg.DatabaseURL != "" {
		pg, err := repository.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		if err := pg.EnsureSchema(ctx); err != nil {
			a.close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
		opts = append(opts, app.WithStore(pg))
		log.Info(ctx, "using postgres store")
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		if err := rdb.Ping(ctx).Err(); err != nil {
			a.close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		opts = append(opts,
			app.WithScorecards(cache.NewRedisScorecards(rdb,
				cache.WithLiveTTL(time.Duration(cfg.ScorecardTTLSeconds)*time.Second))),
			app.WithPublisher(publisher.NewStreamPublisher(rdb)),
		)
		log.Info(ctx, "using redis scorecard cache and update stream", logger.String("addr", cfg.RedisAddr))
	}

	a.hub = live.NewHub(
		live.WithLogger(log.Named("live")),
		live.WithAllowedOrigins(cfg.CORSAllowedOrigins),
	)
	go a.hub.Run(ctx)
	a.closers = append(a.closers, a.hub.Stop)
	opts = append(opts, app.WithBroadcaster(a.hub))

	a.svc = app.New(opts...)
	if err := a.svc.Start(ctx); err != nil {
		a.close()
		return nil, fmt.Errorf("start service: %w", err)
	}
	a.closers = append(a.closers, a.svc.Stop)

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(a.svc, a.svc,
		api.WithAPIKeys(cfg.APIKeys),
		api.WithMaxLeaderboardLimit(cfg.MaxLeaderboardLimit),
		api.WithLive(a.hub),
	).Register(ctx, mux)
	a.handler = api.CORS(cfg.CORSAllowedOrigins, mux)
	return a, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics refreshes the gauges derived from service stats.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if ranked, ok := stats["rankedPlayers"].(int); ok {
		metrics.UpdateRankedPlayers(ranked)
	}
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
}
