package simulate

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/ballbyball/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging initializes the global logger writing to stdout and logFile.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) error {
	if logFile == "" {
		logFile = "simulate_" + time.Now().Format("20060102_150405") + ".log"
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.Init(logger.WithOutput(io.MultiWriter(os.Stdout, file))); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Ball by Ball Match Simulator
============================

Plays random matches against a running service through its public API and
checks every scorecard against a local tally of the same deliveries.

Usage:
  go run ./cmd/simulate [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -key string
        API key of the scorer (default "dev-key")
  -matches int
        Number of matches to play (default 4)
  -overs int
        Overs per innings (default 5)
  -team int
        Players per team (default 11)
  -workers int
        Matches played concurrently (default CPU cores)
  -seed uint
        Seed of the delivery generator, 0 for random
  -resubmit float
        Share of balls sent twice to check idempotency (default 0.05)
  -watch
        Follow the first match over its websocket
  -timeout duration
        HTTP request timeout (default 10s)
  -output string
        Write the played deliveries as JSON to this file
  -log string
        Log file (default: simulate_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  go run ./cmd/simulate -matches 20 -overs 20 -workers 8
  go run ./cmd/simulate -seed 42 -watch -verbose
`)
}
