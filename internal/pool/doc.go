// Package pool owns loaded models: their engine handles, usage stats,
// the active-model pointer, and generation admission. It is structured
// into small files by concern:
//
//   - pool.go: core Pool type, constructor, simple getters.
//   - config.go: Config and package defaults.
//   - types.go: LoadedModel and its bookkeeping fields.
//   - errors.go: error types and helpers (IsTooBusy, IsNotLoaded, ...).
//   - load.go: Load lifecycle, single-flight loading, capacity check.
//   - unload.go: Unload with deferred native release, active repoint.
//   - ops.go: HotSwap and structural config reload.
//   - admission.go: queue/in-flight/global-slot admission, concurrency
//     allowance, CPU-only preference.
//   - generate.go: Generate entry point and usage-stats update.
//   - idle.go: idle-model release for recovery and LRU eviction.
//   - status.go: PoolStatus reporting.
//   - persist.go: usage metadata persistence across restarts.
//   - events.go, eventpub_memory.go: lifecycle event publishing.
//   - metrics.go: Prometheus instrumentation.
//
// All map and pointer mutation serializes through one RWMutex. The
// native engine is never called with the mutex held: loads run behind a
// single-flight guard, and generations pin their handle with a
// reference count so an unload during inference defers the native
// release until the last in-flight call completes.
package pool
