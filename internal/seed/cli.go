package seed

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/healthtwin/riskengine/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging initializes the logger writing to stdout and, when logFile
// is set, to that file as well.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	var out io.Writer = os.Stdout
	var closer io.Closer = io.NopCloser(nil)

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, f)
		closer = f
	}

	if err := logger.Init(logger.WithOutput(out)); err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return closer, nil
}

// DefaultTimeout is the per-request HTTP timeout.
const DefaultTimeout = 10 * time.Second

// ShowHelp prints usage information for the seed tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Risk Engine Seed Tool
=====================

Generates synthetic subjects and submits cardiac and fatigue assessments
for each of them to a running risk engine.

Usage:
  go run ./cmd/seed [options]

Options:
  -url string        Base URL of the engine (default "http://localhost:8005")
  -subjects int      Number of subjects to generate (default 100)
  -workers int       Number of concurrent submitters (default CPU cores * 2)
  -timeout duration  HTTP request timeout (default 10s)
  -profile string    YAML profile file (default: built-in healthy/strained/critical)
  -seed int          Random seed (default: current time)
  -log string        Also write logs to this file
  -verbose           Log every submission
  -help              Show this help message

Examples:
  go run ./cmd/seed -subjects 500 -workers 16
  go run ./cmd/seed -profile nightshift.yaml -seed 42
`)
}
