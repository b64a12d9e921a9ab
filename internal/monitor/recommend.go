package monitor

import (
	"fmt"

	"inferd/pkg/types"
)

// Recommendations derives free-text operator advice from the current
// tier of each sampled resource. Advisory only; nothing here is
// executed automatically. Resources at NORMAL produce no entry.
func (m *Monitor) Recommendations() []string {
	out := []string{}
	for _, metric := range m.Current() {
		if msg := recommend(metric); msg != "" {
			out = append(out, msg)
		}
	}
	return out
}

func recommend(metric types.ResourceMetric) string {
	if metric.Tier.Rank() < types.TierWarning.Rank() {
		return ""
	}
	prefix := fmt.Sprintf("%s at %.1f%% (%s)", resourceLabel(metric.Resource), metric.UsagePercent, metric.Tier)

	switch metric.Resource {
	case types.ResourceMemory:
		switch metric.Tier {
		case types.TierExhausted:
			return prefix + ": unload models now or restart with a lower loaded-model limit"
		case types.TierCritical:
			return prefix + ": unload unused models or lower the loaded-model limit"
		default:
			return prefix + ": consider unloading idle models"
		}
	case types.ResourceCPU:
		if metric.Tier.Rank() >= types.TierCritical.Rank() {
			return prefix + ": reduce concurrent generations or move work off this host"
		}
		return prefix + ": consider lowering generation concurrency"
	case types.ResourceDisk:
		if metric.Tier.Rank() >= types.TierCritical.Rank() {
			return prefix + ": clear the cache directory and remove unused model files"
		}
		return prefix + ": consider clearing cached files"
	case types.ResourceGPU:
		if metric.Tier.Rank() >= types.TierCritical.Rank() {
			return prefix + ": reduce GPU layers or switch new loads to CPU-only"
		}
		return prefix + ": consider reducing GPU layers on the next load"
	}
	return ""
}

func resourceLabel(rt types.ResourceType) string {
	switch rt {
	case types.ResourceCPU:
		return "CPU usage"
	case types.ResourceMemory:
		return "Memory usage"
	case types.ResourceDisk:
		return "Disk usage"
	case types.ResourceGPU:
		return "GPU memory"
	default:
		return string(rt)
	}
}
