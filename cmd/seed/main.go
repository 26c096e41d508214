package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/healthtwin/riskengine/internal/seed"
	"github.com/healthtwin/riskengine/pkg/logger"
)

const (
	defaultSubjects = 100
	defaultWorkers  = 2 // multiplier for runtime.NumCPU()
	runTimeout      = 10 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:8005", "Base URL of the risk engine")
		subjects = flag.Int("subjects", defaultSubjects, "Number of subjects to generate")
		workers  = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		timeout  = flag.Duration("timeout", seed.DefaultTimeout, "HTTP request timeout")
		profile  = flag.String("profile", "", "YAML profile file")
		seedVal  = flag.Int64("seed", 0, "Random seed (0 = current time)")
		logFile  = flag.String("log", "", "Also write logs to this file")
		verbose  = flag.Bool("verbose", false, "Log every submission")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seed.ShowHelp(os.Stdout)
		return
	}

	closer, err := seed.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	code := run(&seed.Config{
		BaseURL:     *baseURL,
		Subjects:    *subjects,
		Workers:     *workers,
		Timeout:     *timeout,
		ProfileFile: *profile,
		Seed:        *seedVal,
		Verbose:     *verbose,
	})
	_ = closer.Close()
	os.Exit(code)
}

func run(cfg *seed.Config) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	if _, err := seed.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "seed run failed", logger.Error(err))
		return 1
	}
	return 0
}
