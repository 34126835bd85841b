package config

import "errors"

// Sentinel kinds returned by Load and Validate.
var (
	// ErrInvalidConfig marks a setting outside its allowed range or a value
	// that does not decode into its field.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks an unreadable config file, dotenv file or env layer.
	ErrLoadConfig = errors.New("load config failed")
)
