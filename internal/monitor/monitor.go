package monitor

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"inferd/pkg/types"
)

// Package defaults; Config zero values fall back to these.
const (
	DefaultInterval   = 30 * time.Second
	DefaultRetention  = 24 * time.Hour
	DefaultMaxSamples = 1000
)

// AlertFunc receives a classified sample whose tier is WARNING or
// worse. Callbacks run synchronously on the monitor loop; panics are
// recovered and logged, never propagated.
type AlertFunc func(types.ResourceMetric)

// Config configures the resource monitor.
type Config struct {
	// Interval between sampling ticks.
	Interval time.Duration

	// Thresholds per resource type. Resources without an entry use
	// types.DefaultThresholds.
	Thresholds map[types.ResourceType]types.ResourceThresholds

	// Retention bounds how far back samples are kept.
	Retention time.Duration

	// MaxSamples is a hard cap per resource regardless of retention.
	MaxSamples int

	// Sampler provides the per-tick readings. Defaults to the local
	// host sampler rooted at "/".
	Sampler Sampler

	Logger zerolog.Logger
}

func (c *Config) applyDefaults() {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.Retention <= 0 {
		c.Retention = DefaultRetention
	}
	if c.MaxSamples <= 0 {
		c.MaxSamples = DefaultMaxSamples
	}
	if c.Sampler == nil {
		c.Sampler = NewSystemSampler("/")
	}
}

// Monitor drives the background sampling loop and answers status,
// history, and trend queries from the retained samples.
type Monitor struct {
	cfg    Config
	hist   *history
	alerts []AlertFunc

	// lastTier is touched only by the loop goroutine.
	lastTier map[types.ResourceType]types.Tier

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a monitor. Call OnAlert to register callbacks, then Start.
func New(cfg Config) *Monitor {
	cfg.applyDefaults()
	return &Monitor{
		cfg:      cfg,
		hist:     newHistory(cfg.Retention, cfg.MaxSamples),
		lastTier: make(map[types.ResourceType]types.Tier),
		done:     make(chan struct{}),
	}
}

// OnAlert registers a callback invoked for every sampled metric at
// WARNING tier or worse. Must be called before Start.
func (m *Monitor) OnAlert(fn AlertFunc) {
	m.alerts = append(m.alerts, fn)
}

// Start launches the sampling loop. The first tick runs immediately.
func (m *Monitor) Start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	go m.run(loopCtx)
}

// Stop cancels the loop and waits for it to exit. Safe to call when the
// monitor was never started.
func (m *Monitor) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
}

func (m *Monitor) run(ctx context.Context) {
	defer close(m.done)

	m.cfg.Logger.Info().
		Dur("interval", m.cfg.Interval).
		Dur("retention", m.cfg.Retention).
		Int("max_samples", m.cfg.MaxSamples).
		Msg("resource monitor started")

	m.tick(ctx, time.Now())

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.cfg.Logger.Info().Msg("resource monitor stopped")
			return
		case now := <-ticker.C:
			m.tick(ctx, now)
		}
	}
}

// tick samples once, classifies, records, and dispatches alerts.
func (m *Monitor) tick(ctx context.Context, now time.Time) {
	for _, metric := range m.cfg.Sampler.Sample(ctx) {
		metric.Timestamp = now
		metric.Tier = m.thresholdsFor(metric.Resource).Classify(metric.UsagePercent)

		m.hist.add(metric)
		resourceUsagePercent.WithLabelValues(string(metric.Resource)).Set(metric.UsagePercent)
		resourceTier.WithLabelValues(string(metric.Resource)).Set(float64(metric.Tier.Rank()))

		m.logTransition(metric)
		if metric.Tier.Rank() >= types.TierWarning.Rank() {
			alertsTotal.WithLabelValues(string(metric.Resource), string(metric.Tier)).Inc()
			m.dispatch(metric)
		}
	}
}

func (m *Monitor) thresholdsFor(rt types.ResourceType) types.ResourceThresholds {
	if t, ok := m.cfg.Thresholds[rt]; ok {
		return t
	}
	return types.DefaultThresholds()
}

// logTransition logs when a resource changes tier between ticks.
func (m *Monitor) logTransition(metric types.ResourceMetric) {
	prev, seen := m.lastTier[metric.Resource]
	m.lastTier[metric.Resource] = metric.Tier
	if seen && prev == metric.Tier {
		return
	}

	ev := m.cfg.Logger.Info()
	if metric.Tier.Rank() >= types.TierCritical.Rank() {
		ev = m.cfg.Logger.Warn()
	}
	ev.Str("resource", string(metric.Resource)).
		Str("tier", string(metric.Tier)).
		Float64("usage_percent", metric.UsagePercent).
		Msg("resource tier changed")
}

func (m *Monitor) dispatch(metric types.ResourceMetric) {
	for _, fn := range m.alerts {
		m.invoke(fn, metric)
	}
}

func (m *Monitor) invoke(fn AlertFunc, metric types.ResourceMetric) {
	defer func() {
		if r := recover(); r != nil {
			m.cfg.Logger.Error().
				Str("resource", string(metric.Resource)).
				Interface("panic", r).
				Msg("alert callback panicked")
		}
	}()
	fn(metric)
}

// Current returns the latest sample per resource, in resource name
// order.
func (m *Monitor) Current() []types.ResourceMetric {
	var out []types.ResourceMetric
	for _, rt := range m.hist.resources() {
		if metric, ok := m.hist.latest(rt); ok {
			out = append(out, metric)
		}
	}
	return out
}

// History returns retained samples for rt within the last window,
// oldest first. A non-positive window returns everything retained.
func (m *Monitor) History(rt types.ResourceType, window time.Duration) []types.ResourceMetric {
	return m.hist.window(rt, window)
}

// Trend summarizes rt's samples over the lookback window.
func (m *Monitor) Trend(rt types.ResourceType, window time.Duration) types.ResourceTrend {
	return computeTrend(rt, m.hist.window(rt, window))
}

// Trends summarizes every sampled resource over the lookback window.
func (m *Monitor) Trends(window time.Duration) []types.ResourceTrend {
	var out []types.ResourceTrend
	for _, rt := range m.hist.resources() {
		out = append(out, computeTrend(rt, m.hist.window(rt, window)))
	}
	return out
}
