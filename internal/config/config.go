// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers files and the environment on top of New.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Supported database drivers.
const (
	DBDriverMemory   = "memory"
	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogJSON switches log output from text to JSON lines.
	LogJSON bool `koanf:"log_json"`

	// LogFile, when set, also writes logs to a size rotated file.
	LogFile       string `koanf:"log_file"`
	LogMaxSizeMB  int    `koanf:"log_max_size_mb"`
	LogMaxAgeDays int    `koanf:"log_max_age_days"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBDriver selects the store backend: memory, sqlite or postgres.
	DBDriver string `koanf:"db_driver"`
	// DBDSN is the driver specific data source name.
	DBDSN string `koanf:"db_dsn"`

	// QueueSize bounds the in-memory division job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of division job workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many job request ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// Balancing refinement bounds.
	MaxIterations     int     `koanf:"max_iterations"`
	ScoreThreshold    float64 `koanf:"score_threshold"`
	PositionThreshold int     `koanf:"position_threshold"`

	// Skill heuristic weights.
	SkillBase            float64 `koanf:"skill_base"`
	SkillMembershipBonus float64 `koanf:"skill_membership_bonus"`
	SkillPositionBonus   float64 `koanf:"skill_position_bonus"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogMaxSizeMB:         100,
		LogMaxAgeDays:        14,
		Addr:                 ":9080",
		DBDriver:             DBDriverMemory,
		QueueSize:            1024,
		WorkerCount:          runtime.NumCPU(),
		DedupeSize:           50_000,
		MaxIterations:        1000,
		ScoreThreshold:       2.0,
		PositionThreshold:    1,
		SkillBase:            3.0,
		SkillMembershipBonus: 0.5,
		SkillPositionBonus:   0.3,
	}
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DBDriver != DBDriverMemory && c.DBDriver != DBDriverSQLite && c.DBDriver != DBDriverPostgres:
		return fmt.Errorf("%w: unknown db_driver %q", ErrInvalidConfig, c.DBDriver)
	case c.DBDriver != DBDriverMemory && strings.TrimSpace(c.DBDSN) == "":
		return fmt.Errorf("%w: db_dsn is required for db_driver %q", ErrInvalidConfig, c.DBDriver)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.MaxIterations <= 0:
		return fmt.Errorf("%w: max_iterations must be positive", ErrInvalidConfig)
	case c.ScoreThreshold <= 0:
		return fmt.Errorf("%w: score_threshold must be positive", ErrInvalidConfig)
	case c.PositionThreshold <= 0:
		return fmt.Errorf("%w: position_threshold must be positive", ErrInvalidConfig)
	case c.SkillBase < 1 || c.SkillBase > 5:
		return fmt.Errorf("%w: skill_base must be within [1, 5]", ErrInvalidConfig)
	case c.SkillMembershipBonus < 0 || c.SkillPositionBonus < 0:
		return fmt.Errorf("%w: skill bonuses must not be negative", ErrInvalidConfig)
	}
	return nil
}
