package service

import (
	"time"

	"inferd/internal/recovery"
	"inferd/pkg/types"
)

// ResourceStatus returns the latest observation per monitored resource.
func (s *Service) ResourceStatus() []types.ResourceMetric {
	return s.monitor.Current()
}

// ResourceTrends summarizes usage over the lookback window for every
// resource with history.
func (s *Service) ResourceTrends(window time.Duration) []types.ResourceTrend {
	return s.monitor.Trends(window)
}

// ResourceTrend summarizes one resource's usage over the lookback
// window.
func (s *Service) ResourceTrend(rt types.ResourceType, window time.Duration) types.ResourceTrend {
	return s.monitor.Trend(rt, window)
}

// ResourceHistory returns the retained samples for one resource.
func (s *Service) ResourceHistory(rt types.ResourceType, window time.Duration) []types.ResourceMetric {
	return s.monitor.History(rt, window)
}

// Recommendations returns advisory next steps for any resource above
// its normal tier. Empty when everything is healthy.
func (s *Service) Recommendations() []string {
	return s.monitor.Recommendations()
}

// RecoveryStatus reports per-resource mitigation bookkeeping.
func (s *Service) RecoveryStatus() []types.RecoveryStatus {
	return s.recovery.Status()
}

// ResetRecovery clears an escalated resource so automatic mitigation
// may resume. Operator-facing.
func (s *Service) ResetRecovery(rt types.ResourceType) {
	s.recovery.Reset(rt)
}

// onResourceAlert runs on the monitor goroutine for every warning-or-
// above observation. Memory pressure below exhaustion triggers at most
// one proactive LRU eviction per tick; exhaustion hands the metric to
// the recovery controller, which applies its own cooldown and attempt
// cap.
func (s *Service) onResourceAlert(m types.ResourceMetric) {
	if m.Resource == types.ResourceMemory &&
		(m.Tier == types.TierWarning || m.Tier == types.TierCritical) {
		if evicted := s.pool.EvictIdleLRU(s.cfg.InactivityTimeout()); evicted != "" {
			s.log.Info().
				Str("model", evicted).
				Str("tier", string(m.Tier)).
				Float64("usage", m.UsagePercent).
				Msg("evicted idle model under memory pressure")
		}
		return
	}
	if m.Tier != types.TierExhausted {
		return
	}
	if err := s.recovery.Handle(m); err != nil {
		if recovery.IsEscalated(err) {
			s.log.Error().Err(err).
				Str("resource", string(m.Resource)).
				Msg("recovery escalated; operator intervention required")
			return
		}
		s.log.Warn().Err(err).Str("resource", string(m.Resource)).Msg("recovery attempt failed")
	}
}
