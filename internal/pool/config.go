package pool

import (
	"time"

	"github.com/rs/zerolog"

	"inferd/internal/engine"
)

// Defaults applied when corresponding Config fields are unset.
const (
	DefaultMaxLoaded     = 2
	DefaultMaxConcurrent = 2
	DefaultMaxQueueDepth = 32
	DefaultMaxWait       = 30 * time.Second
)

// Config encapsulates all tunables for Pool construction.
type Config struct {
	// MaxLoaded caps concurrently loaded models; a forced load may
	// exceed it.
	MaxLoaded int

	// MaxConcurrent is the global in-flight generation allowance across
	// all models.
	MaxConcurrent int

	// MaxQueueDepth is the per-model admission queue size.
	MaxQueueDepth int

	// MaxWait bounds how long admission blocks before reporting busy.
	MaxWait time.Duration

	// StatsPath optionally persists usage metadata across restarts.
	StatsPath string

	// AvailableMemoryMB, when set, supplies the available-memory figure
	// attached to engine init failures.
	AvailableMemoryMB func() int

	Backend   engine.Backend
	Publisher EventPublisher
	Logger    zerolog.Logger
}

func (c *Config) applyDefaults() {
	if c.MaxLoaded <= 0 {
		c.MaxLoaded = DefaultMaxLoaded
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = DefaultMaxConcurrent
	}
	if c.MaxQueueDepth <= 0 {
		c.MaxQueueDepth = DefaultMaxQueueDepth
	}
	if c.MaxWait <= 0 {
		c.MaxWait = DefaultMaxWait
	}
	if c.Publisher == nil {
		c.Publisher = noopPublisher{}
	}
}
