// Package config defines service configuration structures and loading hooks.
//
// Values are layered, lowest precedence first: defaults from New, an
// optional .env file, an optional YAML file named by RISKENGINE_CONFIG and
// finally RISKENGINE_* environment variables.
package config

import "fmt"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8005".
	Addr string `koanf:"addr"`

	// ReadHeaderTimeoutMS bounds how long a client may take to send headers.
	ReadHeaderTimeoutMS int `koanf:"read_header_timeout_ms"`

	// RecordHistory enables the asynchronous assessment history pipeline.
	RecordHistory bool `koanf:"record_history"`

	// QueueSize bounds the in-memory queue of assessments awaiting storage.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of history writers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many idempotency keys are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// HistorySize caps the in-memory history store.
	HistorySize int `koanf:"history_size"`

	// DatabaseURL selects the PostgreSQL history store when non-empty.
	DatabaseURL string `koanf:"database_url"`

	// DBMaxConns caps the PostgreSQL connection pool.
	DBMaxConns int `koanf:"db_max_conns"`

	// RunMigrations applies embedded schema migrations at startup.
	RunMigrations bool `koanf:"run_migrations"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":8005",
		ReadHeaderTimeoutMS: 5_000,
		RecordHistory:       true,
		QueueSize:           10_000,
		WorkerCount:         4,
		DedupeSize:          50_000,
		HistorySize:         10_000,
		DBMaxConns:          10,
		RunMigrations:       true,
	}
}

// Validate checks invariants that defaults cannot guarantee once overridden.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ReadHeaderTimeoutMS <= 0:
		return fmt.Errorf("%w: read_header_timeout_ms must be positive", ErrInvalidConfig)
	case c.DBMaxConns < 0:
		return fmt.Errorf("%w: db_max_conns must not be negative", ErrInvalidConfig)
	}
	if !c.RecordHistory {
		return nil
	}
	switch {
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.HistorySize <= 0:
		return fmt.Errorf("%w: history_size must be positive", ErrInvalidConfig)
	}
	return nil
}

// UsesDatabase reports whether history goes to PostgreSQL.
func (c *Config) UsesDatabase() bool {
	return c.DatabaseURL != ""
}
