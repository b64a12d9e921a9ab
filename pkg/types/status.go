package types

// LoadedModelStatus summarizes one loaded model for status queries.
type LoadedModelStatus struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Current lifecycle state (loading, ready, unloading).
	State string `json:"state"`
	// Active marks the pool's current default generation target.
	Active bool `json:"active"`
	// LoadedAt and LastUsed in unix seconds.
	LoadedAt int64 `json:"loaded_at_unix"`
	LastUsed int64 `json:"last_used_unix"`
	// Cumulative usage since load.
	Queries         int64   `json:"queries"`
	TokensGenerated int64   `json:"tokens_generated"`
	AvgLatencyMS    float64 `json:"avg_latency_ms"`
	// Queueing snapshot.
	QueueLen      int `json:"queue_len"`
	Inflight      int `json:"inflight"`
	MaxQueueDepth int `json:"max_queue_depth"`
	// Structural parameters the engine was initialized with.
	CtxSize   int `json:"ctx_size,omitempty"`
	GPULayers int `json:"gpu_layers,omitempty"`
}

// PoolStatus summarizes the model pool.
type PoolStatus struct {
	Models []LoadedModelStatus `json:"models"`
	// ActiveModel is empty iff nothing is loaded.
	ActiveModel string `json:"active_model,omitempty"`
	LoadedCount int    `json:"loaded_count"`
	MaxLoaded   int    `json:"max_loaded"`
	// MaxConcurrent is the global in-flight allowance; Reserved is the share
	// currently withheld by recovery to shed CPU load.
	MaxConcurrent int `json:"max_concurrent"`
	Reserved      int `json:"reserved"`
	// CPUOnly is set when recovery forced subsequent loads off the GPU.
	CPUOnly bool `json:"cpu_only,omitempty"`
}

// RecoveryStatus reports the recovery bookkeeping for one resource key.
type RecoveryStatus struct {
	Resource ResourceType `json:"resource"`
	Attempts int          `json:"attempts"`
	// LastAttempt in unix seconds; 0 means never attempted.
	LastAttempt int64 `json:"last_attempt_unix,omitempty"`
	// Escalated is terminal until an external reset or a mitigation success.
	Escalated bool `json:"escalated"`
}

// ModelUsage is lifetime usage metadata carried across restarts.
type ModelUsage struct {
	Queries         int64   `json:"queries"`
	TokensGenerated int64   `json:"tokens_generated"`
	AvgLatencyMS    float64 `json:"avg_latency_ms"`
	// LastUsed in unix seconds; 0 means never used.
	LastUsed int64 `json:"last_used_unix,omitempty"`
}

// AvailableModel is a registry record annotated with pool state for
// listings.
type AvailableModel struct {
	ModelConfig
	Loaded bool `json:"loaded"`
	Active bool `json:"active"`
	// Usage is present when the model has been used before, in this
	// process lifetime or a previous one.
	Usage *ModelUsage `json:"usage,omitempty"`
}

// ServiceStatus is the composite view returned by the status operation.
type ServiceStatus struct {
	State            string           `json:"state"`
	UptimeSeconds    int64            `json:"uptime_seconds"`
	ServerTimeUnix   int64            `json:"server_time_unix"`
	Pool             PoolStatus       `json:"pool"`
	RegisteredCount  int              `json:"registered_count"`
	Sessions         int              `json:"sessions"`
	Resources        []ResourceMetric `json:"resources,omitempty"`
	Recovery         []RecoveryStatus `json:"recovery,omitempty"`
	EngineCapability string           `json:"engine_capability"`
}
