package monitor

import "inferd/pkg/types"

// trendEdgeSamples caps how many samples from each end of the window
// feed the direction comparison.
const trendEdgeSamples = 5

// computeTrend summarizes a window of samples for one resource:
// average/min/max usage, plus a direction obtained by comparing the
// mean of the most recent N samples against the mean of the earliest N
// (N = min(5, half the window)). A shift of more than 10% either way
// reports increasing/decreasing; fewer than two samples report unknown.
func computeTrend(rt types.ResourceType, samples []types.ResourceMetric) types.ResourceTrend {
	t := types.ResourceTrend{
		Resource:  rt,
		Direction: types.TrendUnknown,
		Samples:   len(samples),
	}
	if len(samples) == 0 {
		return t
	}

	min, max, sum := samples[0].UsagePercent, samples[0].UsagePercent, 0.0
	for _, s := range samples {
		v := s.UsagePercent
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	t.AveragePercent = sum / float64(len(samples))
	t.MinPercent = min
	t.MaxPercent = max
	t.LatestPercent = samples[len(samples)-1].UsagePercent

	if len(samples) < 2 {
		return t
	}

	n := len(samples) / 2
	if n > trendEdgeSamples {
		n = trendEdgeSamples
	}
	earliest := meanUsage(samples[:n])
	recent := meanUsage(samples[len(samples)-n:])

	switch {
	case earliest == 0:
		if recent > 0 {
			t.Direction = types.TrendIncreasing
		} else {
			t.Direction = types.TrendStable
		}
	case recent > earliest*1.10:
		t.Direction = types.TrendIncreasing
	case recent < earliest*0.90:
		t.Direction = types.TrendDecreasing
	default:
		t.Direction = types.TrendStable
	}
	return t
}

func meanUsage(samples []types.ResourceMetric) float64 {
	sum := 0.0
	for _, s := range samples {
		sum += s.UsagePercent
	}
	return sum / float64(len(samples))
}
