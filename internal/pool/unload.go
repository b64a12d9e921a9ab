package pool

import "inferd/internal/engine"

// Unload removes a model from the pool. Unloading a model that is not
// loaded returns (false, nil), never an error. If the unloaded model
// was active, the pointer moves to the most recently used remaining
// model, or becomes empty.
//
// The native handle is released immediately when idle; with generations
// in flight the release is deferred to the last one's completion.
func (p *Pool) Unload(id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	p.mu.Lock()
	lm, ok := p.models[id]
	if !ok {
		p.mu.Unlock()
		return false, nil
	}
	delete(p.models, id)
	p.rememberUsageLocked(id, lm)
	toClose := lm.detachForClose()
	if p.active == id {
		p.active = p.mostRecentlyUsedLocked()
	}
	active := p.active
	deferred := toClose == nil
	p.mu.Unlock()

	if toClose != nil {
		if err := toClose.Close(); err != nil {
			p.cfg.Logger.Warn().Err(err).Str("model", id).Msg("engine handle close failed")
		}
	}

	loadedModels.Set(float64(p.Len()))
	p.cfg.Publisher.Publish(newEvent(EventUnloadDone, id, "deferred", deferred))
	p.cfg.Logger.Info().
		Str("model", id).
		Str("active", active).
		Bool("close_deferred", deferred).
		Msg("model unloaded")
	p.saveUsageMetadata()
	return true, nil
}

// UnloadAll drains the pool, returning the ids that were unloaded.
func (p *Pool) UnloadAll() []string {
	ids := p.LoadedIDs()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if ok, _ := p.Unload(id); ok {
			out = append(out, id)
		}
	}
	return out
}

// mostRecentlyUsedLocked picks the next active model after an unload.
// Callers hold the pool mutex.
func (p *Pool) mostRecentlyUsedLocked() string {
	var bestID string
	var best *LoadedModel
	for id, lm := range p.models {
		if best == nil || lm.LastUsed.After(best.LastUsed) {
			bestID, best = id, lm
		}
	}
	return bestID
}

// releaseHandle runs a deferred close decided outside the mutex.
func (p *Pool) releaseHandle(id string, h engine.Handle) {
	if h == nil {
		return
	}
	if err := h.Close(); err != nil {
		p.cfg.Logger.Warn().Err(err).Str("model", id).Msg("deferred engine handle close failed")
		return
	}
	p.cfg.Logger.Debug().Str("model", id).Msg("deferred engine handle released")
}
