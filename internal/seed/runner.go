// Package seed generates synthetic subjects and submits them to a running
// risk engine, for demos and load checks.
package seed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/healthtwin/riskengine/pkg/logger"
)

const (
	workerChannelMultiplier = 2
	percentageMultiplier    = 100
)

// Run executes a complete seeding run and returns its statistics.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if cfg.Subjects <= 0 || cfg.Workers <= 0 || cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: need url, subjects > 0 and workers > 0", ErrInvalidConfig)
	}

	log := logger.Get().Named("seed")
	stats := newStats()

	log.Info(ctx, "starting seed run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("subjects", cfg.Subjects),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
		logger.String("profileFile", cfg.ProfileFile))

	if err := checkServiceHealth(ctx, cfg); err != nil {
		return nil, err
	}

	var profiles []Profile
	if cfg.ProfileFile != "" {
		p, err := LoadProfile(cfg.ProfileFile)
		if err != nil {
			return nil, err
		}
		profiles = p
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	subjects := NewGenerator(seed, profiles).Generate(cfg.Subjects)
	stats.SubjectsGenerated = len(subjects)
	log.Info(ctx, "generated subjects", logger.Int("count", len(subjects)), logger.Any("seed", seed))

	submitSubjects(ctx, cfg, subjects, stats)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("seed run interrupted: %w", err)
	}
	return stats, nil
}

// checkServiceHealth verifies the engine answers its liveness endpoint.
func checkServiceHealth(ctx context.Context, cfg *Config) error {
	status, err := newClient(cfg.BaseURL, cfg.Timeout).get(ctx, "/")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, status)
	}
	return nil
}

func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, perSecond float64
	if stats.Submitted > 0 {
		successRate = float64(stats.Successful) / float64(stats.Submitted) * percentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	logger.Get().Named("seed").Info(ctx, "final statistics",
		logger.Int("subjects", stats.SubjectsGenerated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("successful", stats.Successful),
		logger.Int("recorded", stats.Recorded),
		logger.Int("failed", stats.Failed),
		logger.Int("unfitForWork", stats.UnfitForWork),
		logger.Any("cardiacLevels", stats.CardiacLevels),
		logger.Any("fatigueLevels", stats.FatigueLevels),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", perSecond))
}
