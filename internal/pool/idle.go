package pool

import (
	"sort"
	"time"
)

// idleCandidates returns loaded model ids idle for at least minIdle with
// no queued or in-flight work, oldest LastUsed first. Best effort: a
// candidate may pick up work between selection and unload, which is safe
// because the native release is deferred until its last generation ends.
func (p *Pool) idleCandidates(minIdle time.Duration) []string {
	now := time.Now()
	p.mu.RLock()
	ids := make([]string, 0, len(p.models))
	for id, lm := range p.models {
		if lm.busy() {
			continue
		}
		if now.Sub(lm.LastUsed) < minIdle {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return p.models[ids[i]].LastUsed.Before(p.models[ids[j]].LastUsed)
	})
	p.mu.RUnlock()
	return ids
}

// ReleaseMemory unloads up to max idle models, oldest first, and returns
// the ids actually unloaded. Models with in-flight or queued work are
// never candidates. Used by recovery when memory is exhausted.
func (p *Pool) ReleaseMemory(minIdle time.Duration, max int) []string {
	if max <= 0 {
		return nil
	}
	var released []string
	for _, id := range p.idleCandidates(minIdle) {
		if len(released) >= max {
			break
		}
		ok, err := p.Unload(id)
		if err != nil {
			p.cfg.Logger.Warn().Err(err).Str("model", id).Msg("idle release failed")
			continue
		}
		if ok {
			released = append(released, id)
		}
	}
	if len(released) > 0 {
		p.cfg.Logger.Info().
			Strs("models", released).
			Dur("min_idle", minIdle).
			Msg("released idle models")
	}
	return released
}

// EvictIdleLRU unloads the single least-recently-used model that has been
// idle for at least minIdle. Returns the evicted id, or "" when nothing
// qualified.
func (p *Pool) EvictIdleLRU(minIdle time.Duration) string {
	for _, id := range p.idleCandidates(minIdle) {
		ok, err := p.Unload(id)
		if err != nil {
			p.cfg.Logger.Warn().Err(err).Str("model", id).Msg("lru eviction failed")
			continue
		}
		if ok {
			p.cfg.Logger.Info().Str("model", id).Msg("evicted least recently used idle model")
			return id
		}
	}
	return ""
}
