package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/healthtwin/riskengine/internal/adapters/http/api"
	"github.com/healthtwin/riskengine/internal/adapters/http/swagger"
	"github.com/healthtwin/riskengine/internal/adapters/repository"
	service "github.com/healthtwin/riskengine/internal/app"
	"github.com/healthtwin/riskengine/internal/config"
	"github.com/healthtwin/riskengine/pkg/logger"
	"github.com/healthtwin/riskengine/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	shutdownTimeout           = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

var errNoDatabase = errors.New("no database url configured")

func main() {
	migrateDown := flag.Bool("migrate-down", false, "roll back every history schema migration and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> .env -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	applyLogLevel(ctx, log, cfg.LogLevel)

	if *migrateDown {
		if err := rollback(ctx, cfg, log); err != nil {
			log.Error(ctx, "schema rollback failed", logger.Error(err))
			os.Exit(1)
		}
		return
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "risk engine stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	store, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}

	svc := service.New(
		service.WithLogger(log.Named("service")),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithHistorySize(cfg.HistorySize),
		service.WithRecordHistory(cfg.RecordHistory),
		service.WithStore(store),
	)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			log.Error(stopCtx, "service stop failed", logger.Error(err))
		}
	}()

	go startSystemMetricsUpdater(ctx)

	if path := os.Getenv(config.EnvConfigFile); path != "" {
		go func() {
			err := config.Watch(ctx, path, log, func(next *config.Config) {
				applyLogLevel(ctx, log, next.LogLevel)
			})
			if err != nil {
				log.Warn(ctx, "config watch stopped", logger.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewServer(svc).Routes(swagger.Register),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: time.Duration(cfg.ReadHeaderTimeoutMS) * time.Millisecond,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- errors.Join(api.ErrServe, err)
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// rollback reverts the history schema of the configured database.
func rollback(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	if !cfg.UsesDatabase() {
		return errNoDatabase
	}
	if err := repository.MigrateDown(cfg.DatabaseURL); err != nil {
		return err
	}
	log.Info(ctx, "history schema rolled back")
	return nil
}

// newStore picks the history backend: PostgreSQL when a database URL is
// configured, otherwise nil so the service falls back to its in-memory ring.
func newStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	if !cfg.UsesDatabase() {
		return nil, nil
	}
	if cfg.RunMigrations {
		if err := repository.Migrate(cfg.DatabaseURL); err != nil {
			return nil, err
		}
	}
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL, int32(cfg.DBMaxConns)) //nolint:gosec // bounded by config validation
	if err != nil {
		return nil, err
	}
	return repository.NewPostgresStore(pool), nil
}

// applyLogLevel sets the log level, falling back to info on invalid input.
func applyLogLevel(ctx context.Context, log logger.Logger, level string) {
	if err := logger.SetLevelString(level); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", level), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
}

// startSystemMetricsUpdater refreshes runtime gauges until ctx ends.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metrics.DefaultRefreshInterval())
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

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	var avgPauseMs float64
	if m.NumGC > 0 {
		avgPauseMs = float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
	}
	metrics.UpdateSystem(m.Alloc, runtime.NumGoroutine(), avgPauseMs)
}
