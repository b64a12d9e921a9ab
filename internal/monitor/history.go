package monitor

import (
	"sort"
	"sync"
	"time"

	"inferd/pkg/types"
)

// history keeps a bounded, time-windowed list of samples per resource
// type. Writes come only from the monitor loop; reads may come from any
// goroutine, so access is lock-protected and reads return copies.
type history struct {
	mu         sync.RWMutex
	retention  time.Duration
	maxSamples int
	samples    map[types.ResourceType][]types.ResourceMetric
}

func newHistory(retention time.Duration, maxSamples int) *history {
	return &history{
		retention:  retention,
		maxSamples: maxSamples,
		samples:    make(map[types.ResourceType][]types.ResourceMetric),
	}
}

// add appends a sample and prunes its resource's list: entries older
// than the retention window relative to the new sample are dropped, and
// the list never exceeds maxSamples regardless of timestamps.
func (h *history) add(m types.ResourceMetric) {
	h.mu.Lock()
	defer h.mu.Unlock()

	list := append(h.samples[m.Resource], m)

	cutoff := m.Timestamp.Add(-h.retention)
	start := 0
	for start < len(list) && list[start].Timestamp.Before(cutoff) {
		start++
	}
	list = list[start:]

	if len(list) > h.maxSamples {
		list = list[len(list)-h.maxSamples:]
	}
	h.samples[m.Resource] = list
}

// window returns a copy of the samples for rt whose timestamps fall
// within the last d, oldest first. A non-positive d returns everything
// retained.
func (h *history) window(rt types.ResourceType, d time.Duration) []types.ResourceMetric {
	h.mu.RLock()
	defer h.mu.RUnlock()

	list := h.samples[rt]
	if len(list) == 0 {
		return nil
	}
	start := 0
	if d > 0 {
		cutoff := list[len(list)-1].Timestamp.Add(-d)
		for start < len(list) && list[start].Timestamp.Before(cutoff) {
			start++
		}
	}
	out := make([]types.ResourceMetric, len(list)-start)
	copy(out, list[start:])
	return out
}

// latest returns the most recent sample for rt.
func (h *history) latest(rt types.ResourceType) (types.ResourceMetric, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	list := h.samples[rt]
	if len(list) == 0 {
		return types.ResourceMetric{}, false
	}
	return list[len(list)-1], true
}

// resources returns the resource types with at least one sample, in
// stable name order.
func (h *history) resources() []types.ResourceType {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]types.ResourceType, 0, len(h.samples))
	for rt, list := range h.samples {
		if len(list) > 0 {
			out = append(out, rt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// count returns the number of retained samples for rt.
func (h *history) count(rt types.ResourceType) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.samples[rt])
}
