package types

import "time"

// ResourceType identifies a monitored hardware resource.
type ResourceType string

const (
	ResourceCPU    ResourceType = "cpu"
	ResourceMemory ResourceType = "memory"
	ResourceDisk   ResourceType = "disk"
	ResourceGPU    ResourceType = "gpu"
)

// Tier classifies a resource's utilization against its thresholds.
type Tier string

const (
	TierNormal    Tier = "normal"
	TierWarning   Tier = "warning"
	TierCritical  Tier = "critical"
	TierExhausted Tier = "exhausted"
)

// Rank orders tiers by severity: normal=0 .. exhausted=3.
func (t Tier) Rank() int {
	switch t {
	case TierWarning:
		return 1
	case TierCritical:
		return 2
	case TierExhausted:
		return 3
	default:
		return 0
	}
}

// ResourceThresholds holds the tier boundaries for one resource type,
// as usage percentages. A usage equal to a boundary lands in the higher tier.
type ResourceThresholds struct {
	WarningPercent   float64 `json:"warning_percent" yaml:"warning_percent" toml:"warning_percent"`
	CriticalPercent  float64 `json:"critical_percent" yaml:"critical_percent" toml:"critical_percent"`
	ExhaustedPercent float64 `json:"exhausted_percent" yaml:"exhausted_percent" toml:"exhausted_percent"`
}

// DefaultThresholds returns the stock 70/85/95 boundaries.
func DefaultThresholds() ResourceThresholds {
	return ResourceThresholds{WarningPercent: 70, CriticalPercent: 85, ExhaustedPercent: 95}
}

// Classify maps a usage percentage onto a tier.
func (t ResourceThresholds) Classify(usagePercent float64) Tier {
	switch {
	case usagePercent >= t.ExhaustedPercent:
		return TierExhausted
	case usagePercent >= t.CriticalPercent:
		return TierCritical
	case usagePercent >= t.WarningPercent:
		return TierWarning
	default:
		return TierNormal
	}
}

// ResourceMetric is one sampled observation of one resource.
type ResourceMetric struct {
	Resource ResourceType `json:"resource"`
	// UsagePercent in [0,100].
	UsagePercent float64 `json:"usage_percent"`
	// AvailableMB and TotalMB are absolute figures where the resource has a
	// capacity (memory, disk, GPU memory); both are zero for CPU.
	AvailableMB float64   `json:"available_mb,omitempty"`
	TotalMB     float64   `json:"total_mb,omitempty"`
	Tier        Tier      `json:"tier"`
	Timestamp   time.Time `json:"timestamp"`
	// Details carries resource-specific extras (gpu name, temperature, ...).
	Details map[string]any `json:"details,omitempty"`
}

// TrendDirection summarizes how a resource's usage moved over a window.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
	// TrendUnknown means too few samples to compare.
	TrendUnknown TrendDirection = "unknown"
)

// ResourceTrend reports usage statistics for one resource over a lookback
// window, plus a coarse direction classification.
type ResourceTrend struct {
	Resource       ResourceType   `json:"resource"`
	Direction      TrendDirection `json:"direction"`
	AveragePercent float64        `json:"average_percent"`
	MinPercent     float64        `json:"min_percent"`
	MaxPercent     float64        `json:"max_percent"`
	LatestPercent  float64        `json:"latest_percent"`
	Samples        int            `json:"samples"`
}
