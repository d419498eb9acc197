package store

import (
	"log/slog"
	"time"
)

// Config holds configuration for the Store.
type Config struct {
	// Logger receives structured diagnostics (subscription churn, slow
	// consumers). If nil, slog.Default() is used.
	Logger *slog.Logger

	// Now supplies the store's clock, used for auto-generated child keys.
	// If nil, time.Now is used. Override in tests for deterministic keys.
	Now func() time.Time

	// SubscriptionBuffer is the delivery channel capacity of each
	// subscription. A subscriber that falls further behind than this is
	// backed by an unbounded internal queue, so writers never block.
	// Default: 16. Max: 1024.
	SubscriptionBuffer int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		SubscriptionBuffer: 16,
	}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.SubscriptionBuffer < 1 {
		c.SubscriptionBuffer = 16
	}
	if c.SubscriptionBuffer > 1024 {
		c.SubscriptionBuffer = 1024
	}
}
