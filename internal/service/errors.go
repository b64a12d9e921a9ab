package service

import (
	"fmt"

	"inferd/internal/pool"
	"inferd/pkg/types"
)

// resourceExhaustedError refuses new generations while memory or GPU
// sits in the exhausted tier.
type resourceExhaustedError struct {
	resource types.ResourceType
	usage    float64
}

func (e resourceExhaustedError) Error() string {
	return fmt.Sprintf("%s exhausted (%.1f%% used): refusing new generations until recovery frees capacity",
		e.resource, e.usage)
}

// ErrResourceExhausted constructs a resourceExhaustedError from the
// triggering metric.
func ErrResourceExhausted(m types.ResourceMetric) error {
	return resourceExhaustedError{resource: m.Resource, usage: m.UsagePercent}
}

// IsResourceExhausted reports whether err is the exhaustion refusal.
func IsResourceExhausted(err error) bool {
	_, ok := err.(resourceExhaustedError)
	return ok
}

// IsUnavailable groups the conditions under which a generation cannot
// be served right now: no model loaded, a native engine failure, or a
// resource exhaustion in progress.
func IsUnavailable(err error) bool {
	return pool.IsNotLoaded(err) || pool.IsInferenceFailed(err) || IsResourceExhausted(err)
}
