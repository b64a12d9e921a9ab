package pool

import (
	"context"
	"fmt"
	"time"

	"inferd/pkg/types"
)

// HotSwap loads `to` if necessary and atomically repoints the active
// model to it. The previous model stays loaded. If `to` cannot be
// loaded the active pointer is left unchanged. A non-empty `from` must
// match the current active model.
func (p *Pool) HotSwap(ctx context.Context, from string, to types.ModelConfig) error {
	if from != "" {
		p.mu.RLock()
		active := p.active
		p.mu.RUnlock()
		if active != from {
			return fmt.Errorf("hot swap: %s is not the active model (active: %q)", from, active)
		}
	}

	if _, err := p.Load(ctx, to, false); err != nil {
		return err
	}

	p.mu.Lock()
	if _, ok := p.models[to.ID]; !ok {
		// unloaded between our load and the repoint
		p.mu.Unlock()
		return ErrNotLoaded(to.ID)
	}
	prev := p.active
	p.active = to.ID
	p.mu.Unlock()

	p.cfg.Publisher.Publish(newEvent(EventSwapActive, to.ID, "from", prev))
	p.cfg.Logger.Info().Str("from", prev).Str("to", to.ID).Msg("active model swapped")
	return nil
}

// ApplyConfig installs an updated model config. When the model is
// loaded and the update touches structural engine parameters, the model
// is rebuilt: a fresh handle is constructed with the new config and
// swapped in wholesale, so generations admitted meanwhile still
// complete on the old handle, which is released once they drain.
// Non-structural updates (display name, sampling defaults) apply in
// place.
func (p *Pool) ApplyConfig(ctx context.Context, cfg types.ModelConfig, structural bool) error {
	id := cfg.ID

	p.mu.Lock()
	lm, loaded := p.models[id]
	if !loaded {
		p.mu.Unlock()
		return nil
	}
	if !structural {
		lm.Config = cfg
		p.mu.Unlock()
		p.cfg.Logger.Info().Str("model", id).Msg("model config updated in place")
		return nil
	}
	// Structural rebuild: guard the id so concurrent loads wait for us.
	if _, inFlight := p.loading[id]; inFlight {
		p.mu.Unlock()
		return fmt.Errorf("config reload: %s is already loading", id)
	}
	flight := make(chan struct{})
	p.loading[id] = flight
	p.mu.Unlock()

	fresh, err := p.initModel(ctx, cfg)

	p.mu.Lock()
	delete(p.loading, id)
	close(flight)
	if err != nil {
		p.mu.Unlock()
		p.cfg.Publisher.Publish(newEvent(EventReloadError, id, "error", err.Error()))
		return err
	}
	old, stillLoaded := p.models[id]
	if !stillLoaded {
		// unloaded while we were rebuilding: drop the fresh handle
		toClose := fresh.detachForClose()
		p.mu.Unlock()
		p.releaseHandle(id, toClose)
		return nil
	}
	// Carry lifetime counters across the rebuild.
	fresh.Queries = old.Queries
	fresh.TokensGenerated = old.TokensGenerated
	fresh.AvgLatencyMS = old.AvgLatencyMS
	p.models[id] = fresh
	p.rememberUsageLocked(id, old)
	toClose := old.detachForClose()
	p.mu.Unlock()

	p.releaseHandle(id, toClose)
	p.cfg.Publisher.Publish(newEvent(EventReloadDone, id))
	p.cfg.Logger.Info().
		Str("model", id).
		Int("ctx_size", cfg.CtxSize).
		Int("gpu_layers", cfg.GPULayers).
		Dur("took", time.Since(fresh.LoadedAt)).
		Msg("model rebuilt with updated config")
	return nil
}
