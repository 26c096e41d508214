package config

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
	ErrWatchConfig   = errors.New("watch config failed")
)
