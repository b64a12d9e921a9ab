// Package monitor runs the background resource sampling loop. It is
// structured into small files by concern:
//
//   - monitor.go: Monitor type, config, loop lifecycle, tick handling.
//   - sampler.go: Sampler interface.
//   - sampler_system.go: host sampler (procfs, statfs, nvidia-smi).
//   - history.go: bounded time-windowed sample history.
//   - trends.go: trend computation over a lookback window.
//   - recommend.go: operator recommendations from current tiers.
//   - metrics.go: Prometheus gauges and counters.
//
// The loop is the sole writer of sample history and recovery-relevant
// alerts; external code registers callbacks with OnAlert before Start
// and queries history concurrently through copy-on-read accessors.
package monitor
