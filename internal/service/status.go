package service

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"inferd/internal/engine"
	"inferd/pkg/types"
)

const statusCacheKey = "service_status"

// Ready reports whether the daemon can serve generations right now: the
// engine runtime is present and at least one model finished loading.
func (s *Service) Ready() bool {
	if s.capability == engine.CapabilityUnavailable {
		return false
	}
	return s.pool.Len() > 0
}

// ServiceStatus returns the composite daemon view. Building it touches
// every subsystem lock, so results are cached for the configured TTL;
// callers polling faster than that get the cached copy.
func (s *Service) ServiceStatus() types.ServiceStatus {
	if v, ok := s.status.Get(statusCacheKey); ok {
		return v.(types.ServiceStatus)
	}
	st := s.buildStatus()
	s.status.Set(statusCacheKey, st, gocache.DefaultExpiration)
	return st
}

func (s *Service) buildStatus() types.ServiceStatus {
	resources := s.monitor.Current()
	rec := s.recovery.Status()

	state := "ready"
	for _, m := range resources {
		if m.Tier == types.TierExhausted {
			state = "degraded"
			break
		}
	}
	for _, r := range rec {
		if r.Escalated {
			state = "degraded"
			break
		}
	}

	return types.ServiceStatus{
		State:            state,
		UptimeSeconds:    int64(time.Since(s.started).Seconds()),
		ServerTimeUnix:   time.Now().Unix(),
		Pool:             s.pool.Status(),
		RegisteredCount:  s.registry.Len(),
		Sessions:         s.conv.Count(),
		Resources:        resources,
		Recovery:         rec,
		EngineCapability: string(s.capability),
	}
}
