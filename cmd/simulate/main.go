package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/okian/ballbyball/internal/simulate"
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		apiKey     = flag.String("key", "dev-key", "API key of the scorer")
		matches    = flag.Int("matches", simulate.DefaultMatches, "Number of matches to play")
		overs      = flag.Int("overs", simulate.DefaultOvers, "Overs per innings")
		teamSize   = flag.Int("team", simulate.DefaultTeamSize, "Players per team")
		workers    = flag.Int("workers", runtime.NumCPU(), "Matches played concurrently")
		seed       = flag.Uint64("seed", 0, "Seed of the delivery generator, 0 for random")
		resubmit   = flag.Float64("resubmit", 0.05, "Share of balls sent twice to check idempotency")
		watch      = flag.Bool("watch", false, "Follow the first match over its websocket")
		timeout    = flag.Duration("timeout", simulate.DefaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Write the played deliveries as JSON to this file")
		logFile    = flag.String("log", "", "Log file (default: simulate_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	if err := simulate.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &simulate.Config{
		BaseURL:    *baseURL,
		APIKey:     *apiKey,
		Matches:    *matches,
		Overs:      *overs,
		TeamSize:   *teamSize,
		Workers:    *workers,
		Timeout:    *timeout,
		Seed:       *seed,
		Resubmit:   *resubmit,
		Watch:      *watch,
		OutputFile: *outputFile,
		Verbose:    *verbose,
	}
	if _, _, err := simulate.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
