package seed

import "errors"

var (
	ErrInvalidConfig  = errors.New("invalid seed config")
	ErrInvalidProfile = errors.New("invalid seed profile")
	ErrUnhealthy      = errors.New("risk engine is not healthy")
)
