// Package recovery drives automatic mitigation when a resource reaches
// the EXHAUSTED tier. Each resource key is gated by a cooldown window
// and an attempt cap; a key that exhausts its attempts is escalated and
// left to the operator.
package recovery

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"inferd/pkg/types"
)

// Package defaults; Config zero values fall back to these.
const (
	DefaultCooldown    = 5 * time.Minute
	DefaultMaxAttempts = 3
)

// Reliever is what the controller asks to shed load. The model pool
// implements it.
type Reliever interface {
	// ReleaseMemory unloads up to max models idle for at least minIdle,
	// oldest idle first, and returns the ids actually unloaded.
	ReleaseMemory(minIdle time.Duration, max int) []string

	// ReduceConcurrency lowers the global generation allowance by one
	// slot. Returns false when no further reduction is possible.
	ReduceConcurrency() bool

	// PreferCPUOnly makes subsequent model loads skip GPU offload.
	// Returns false when loads were already CPU-only.
	PreferCPUOnly() bool
}

// DiskCleaner is an optional Reliever extension. Pools without a cache
// cleanup hook simply don't implement it, which turns disk mitigation
// into a recorded no-op.
type DiskCleaner interface {
	// CleanupDisk removes reclaimable cached files and returns the
	// number of bytes freed.
	CleanupDisk() (int64, error)
}

// Config configures the recovery controller.
type Config struct {
	// Cooldown is the minimum gap between mitigation attempts for one
	// resource key.
	Cooldown time.Duration

	// MaxAttempts caps consecutive failed attempts before a key is
	// escalated.
	MaxAttempts int

	// InactivityTimeout is the pool's full idle timeout; memory
	// mitigation targets models idle for at least half of it.
	InactivityTimeout time.Duration

	Reliever Reliever
	Logger   zerolog.Logger
}

func (c *Config) applyDefaults() {
	if c.Cooldown <= 0 {
		c.Cooldown = DefaultCooldown
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
}

// mitigation outcomes
type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeFailed
	outcomeSkipped
)

func (o outcome) String() string {
	switch o {
	case outcomeSuccess:
		return "success"
	case outcomeFailed:
		return "failed"
	default:
		return "skipped"
	}
}

type attemptState struct {
	attempts    int
	lastAttempt time.Time
}

// Controller applies per-resource-key mitigation with cooldown and
// attempt-cap gating. Handle runs on the monitor goroutine; Status and
// Reset may be called from anywhere.
type Controller struct {
	cfg Config

	mu    sync.Mutex
	state map[types.ResourceType]*attemptState
}

// New creates a recovery controller.
func New(cfg Config) *Controller {
	cfg.applyDefaults()
	return &Controller{
		cfg:   cfg,
		state: make(map[types.ResourceType]*attemptState),
	}
}

// Handle reacts to one classified sample. Tiers below EXHAUSTED are
// ignored. Returns ErrEscalated when the key's attempt budget is spent;
// cooldown skips and mitigation failures return nil and are visible via
// Status and logs.
func (c *Controller) Handle(metric types.ResourceMetric) error {
	if metric.Tier != types.TierExhausted {
		return nil
	}
	now := metric.Timestamp
	if now.IsZero() {
		now = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.state[metric.Resource]
	if !ok {
		st = &attemptState{}
		c.state[metric.Resource] = st
	}

	if st.attempts >= c.cfg.MaxAttempts {
		return ErrEscalated(string(metric.Resource), st.attempts)
	}
	// Cooldown gate: an observation inside the window changes nothing,
	// so the window never extends itself under sustained exhaustion.
	if !st.lastAttempt.IsZero() && now.Sub(st.lastAttempt) < c.cfg.Cooldown {
		return nil
	}

	out := c.mitigate(metric)
	attemptsTotal.WithLabelValues(string(metric.Resource), out.String()).Inc()
	st.lastAttempt = now

	switch out {
	case outcomeSuccess:
		st.attempts = 0
	case outcomeFailed:
		st.attempts++
		if st.attempts >= c.cfg.MaxAttempts {
			c.cfg.Logger.Error().
				Str("resource", string(metric.Resource)).
				Int("attempts", st.attempts).
				Msg("recovery escalated, automatic mitigation suspended")
		}
	case outcomeSkipped:
		// timestamp only: nothing was available to attempt
	}
	return nil
}

// mitigate runs the resource-specific action and classifies the result.
// Called with the state mutex held; the reliever must not call back
// into the controller.
func (c *Controller) mitigate(metric types.ResourceMetric) outcome {
	log := c.cfg.Logger.With().
		Str("resource", string(metric.Resource)).
		Float64("usage_percent", metric.UsagePercent).
		Logger()

	switch metric.Resource {
	case types.ResourceMemory:
		ids := c.cfg.Reliever.ReleaseMemory(c.cfg.InactivityTimeout/2, 2)
		if len(ids) == 0 {
			log.Warn().Msg("memory mitigation found no idle models to unload")
			return outcomeFailed
		}
		log.Info().Strs("unloaded", ids).Msg("memory mitigation unloaded idle models")
		return outcomeSuccess

	case types.ResourceDisk:
		dc, ok := c.cfg.Reliever.(DiskCleaner)
		if !ok {
			log.Info().Msg("disk mitigation skipped, no cleanup hook")
			return outcomeSkipped
		}
		freed, err := dc.CleanupDisk()
		if err != nil {
			log.Warn().Err(err).Msg("disk cleanup failed")
			return outcomeFailed
		}
		if freed == 0 {
			log.Warn().Msg("disk cleanup freed nothing")
			return outcomeFailed
		}
		log.Info().Int64("bytes_freed", freed).Msg("disk mitigation cleaned cache")
		return outcomeSuccess

	case types.ResourceCPU:
		if !c.cfg.Reliever.ReduceConcurrency() {
			log.Warn().Msg("cpu mitigation could not reduce concurrency further")
			return outcomeFailed
		}
		log.Info().Msg("cpu mitigation reduced generation concurrency")
		return outcomeSuccess

	case types.ResourceGPU:
		if !c.cfg.Reliever.PreferCPUOnly() {
			log.Warn().Msg("gpu mitigation ineffective, loads already cpu-only")
			return outcomeFailed
		}
		log.Info().Msg("gpu mitigation switched future loads to cpu-only")
		return outcomeSuccess
	}
	return outcomeSkipped
}

// Reset clears the attempt state for one resource key, re-enabling
// automatic mitigation after an escalation.
func (c *Controller) Reset(rt types.ResourceType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.state, rt)
}

// Status reports attempt bookkeeping per resource key, in resource name
// order.
func (c *Controller) Status() []types.RecoveryStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]types.RecoveryStatus, 0, len(c.state))
	for rt, st := range c.state {
		out = append(out, types.RecoveryStatus{
			Resource:    rt,
			Attempts:    st.attempts,
			LastAttempt: st.lastAttempt.Unix(),
			Escalated:   st.attempts >= c.cfg.MaxAttempts,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Resource < out[j].Resource })
	return out
}
