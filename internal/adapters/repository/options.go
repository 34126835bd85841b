package repository

import (
	"time"

	"github.com/google/uuid"
)

// Option applies a configuration option to a store.
type Option func(*storeConfig)

type storeConfig struct {
	now   func() time.Time
	newID func() string
}

func defaultStoreConfig(opts []Option) storeConfig {
	cfg := storeConfig{
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithClock sets the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(c *storeConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIDGenerator sets the generator used for new record ids.
func WithIDGenerator(gen func() string) Option {
	return func(c *storeConfig) {
		if gen != nil {
			c.newID = gen
		}
	}
}
