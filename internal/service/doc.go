// Package service composes the registry, pool, conversation store,
// resource monitor, and recovery controller into the operations the
// daemon exposes. Files by concern:
//
//   - service.go: Service construction, Start, Shutdown.
//   - errors.go: the resource-exhausted error class and IsUnavailable.
//   - models.go: register/load/unload/swap/update and listing ops.
//   - generate.go: conversation-aware generation with the exhaustion gate.
//   - resources.go: resource views and the monitor alert handler.
//   - status.go: composite status view with a short TTL cache.
//   - reliever.go: recovery mitigation hooks (pool + disk cache cleanup).
//
// The service owns no goroutines of its own; the monitor's sampling
// loop is the only background activity, and recovery runs inside its
// tick via the alert callback.
package service
