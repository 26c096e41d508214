package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables controlling where configuration comes from.
const (
	EnvPrefix     = "RISKENGINE_"
	EnvConfigFile = EnvPrefix + "CONFIG"
	EnvDotenvFile = EnvPrefix + "DOTENV"
	defaultDotenv = ".env"
)

// Load builds a Config by layering defaults, .env, optional YAML file, and
// env vars. Order of precedence (low -> high):
//  1. defaults (New())
//  2. .env file (RISKENGINE_DOTENV, default ".env"), if present
//  3. YAML file if RISKENGINE_CONFIG is set
//  4. env (prefix RISKENGINE_)
func Load(_ context.Context) (*Config, error) {
	if err := loadDotenv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrLoadConfig, path, err)
		}
	}

	// RISKENGINE_QUEUE_SIZE -> queue_size (flat keys)
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: environment: %w", ErrLoadConfig, err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotenv populates the process environment from a dotenv file without
// overriding variables that are already set. A missing default file is not
// an error; a missing explicitly named file is.
func loadDotenv() error {
	path := os.Getenv(EnvDotenvFile)
	explicit := path != ""
	if !explicit {
		path = defaultDotenv
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: dotenv %s: %w", ErrLoadConfig, path, err)
	}
	return nil
}
