package monitor

import (
	"context"

	"inferd/pkg/types"
)

// Sampler produces point-in-time resource metrics. Implementations
// return one metric per resource type they can observe this tick; a
// resource that cannot be sampled (no GPU, first CPU reading) is simply
// absent from the slice. Tier and Timestamp are stamped by the monitor,
// not the sampler.
//
// Sample is called from the monitor loop only, so implementations may
// keep unsynchronized state between calls.
type Sampler interface {
	Sample(ctx context.Context) []types.ResourceMetric
}
