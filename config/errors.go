package config

import "errors"

// Sentinel errors for configuration loading.
var (
	// ErrInvalidConfig is matched by every ValidationError.
	ErrInvalidConfig = errors.New("config: invalid configuration")

	// ErrParse indicates the document is not valid YAML for Config.
	ErrParse = errors.New("config: parse failed")
)
