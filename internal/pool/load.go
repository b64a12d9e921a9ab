package pool

import (
	"context"
	"time"

	"inferd/internal/common/fsutil"
	"inferd/internal/engine"
	"inferd/pkg/types"
)

// Load brings a model into the pool. Loading an already-loaded model is
// a no-op returning (false, nil). When the pool is at capacity the load
// is refused with a CapacityExceeded error unless force is set, in
// which case the loaded count may exceed the cap.
//
// Only if no model was active at commit time does the new model become
// the active one.
func (p *Pool) Load(ctx context.Context, cfg types.ModelConfig, force bool) (bool, error) {
	id := cfg.ID
	var flight chan struct{}
	for {
		p.mu.Lock()
		if _, ok := p.models[id]; ok {
			p.mu.Unlock()
			return false, nil
		}
		ch, inFlight := p.loading[id]
		if !inFlight {
			if !force && len(p.models)+len(p.loading) >= p.cfg.MaxLoaded {
				loaded := len(p.models)
				p.mu.Unlock()
				return false, ErrCapacityExceeded(id, loaded, p.cfg.MaxLoaded)
			}
			flight = make(chan struct{})
			p.loading[id] = flight
			p.mu.Unlock()
			break
		}
		p.mu.Unlock()

		// Another caller is loading this id; wait and re-observe.
		select {
		case <-ch:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	lm, err := p.initModel(ctx, cfg)

	p.mu.Lock()
	delete(p.loading, id)
	close(flight)
	if err != nil {
		p.mu.Unlock()
		loadsTotal.WithLabelValues("error").Inc()
		p.cfg.Publisher.Publish(newEvent(EventLoadError, id, "error", err.Error()))
		p.cfg.Logger.Error().Err(err).Str("model", id).Msg("model load failed")
		return false, err
	}
	p.models[id] = lm
	if p.active == "" {
		p.active = id
	}
	active := p.active == id
	p.mu.Unlock()

	loadedModels.Set(float64(p.Len()))
	loadsTotal.WithLabelValues("ok").Inc()
	p.cfg.Publisher.Publish(newEvent(EventLoadReady, id, "active", active))
	p.cfg.Logger.Info().
		Str("model", id).
		Bool("active", active).
		Dur("took", time.Since(lm.LoadedAt)).
		Msg("model loaded")
	return true, nil
}

// initModel constructs the native engine handle outside the pool mutex
// and assembles a fresh LoadedModel. Lifetime usage counters are seeded
// from persisted metadata; timestamps always restart at now.
func (p *Pool) initModel(ctx context.Context, cfg types.ModelConfig) (*LoadedModel, error) {
	p.mu.RLock()
	if p.cpuOnly {
		cfg.GPULayers = 0
	}
	rec, hasRec := p.stats[cfg.ID]
	p.mu.RUnlock()

	p.cfg.Publisher.Publish(newEvent(EventLoadStart, cfg.ID))

	handle, err := p.cfg.Backend.Load(ctx, cfg)
	if err != nil {
		required := fsutil.FileSizeMB(cfg.Path)
		available := 0
		if p.cfg.AvailableMemoryMB != nil {
			available = p.cfg.AvailableMemoryMB()
		}
		if engine.IsUnavailable(err) {
			return nil, err
		}
		return nil, initFailureError{id: cfg.ID, requiredMB: required, availableMB: available, err: err}
	}

	now := time.Now()
	lm := &LoadedModel{
		Config:   cfg,
		LoadedAt: now,
		LastUsed: now,
		handle:   handle,
		genCh:    make(chan struct{}, 1),
		queueCh:  make(chan struct{}, p.cfg.MaxQueueDepth),
	}
	if hasRec {
		lm.Queries = rec.Queries
		lm.TokensGenerated = rec.TokensGenerated
		lm.AvgLatencyMS = rec.AvgLatencyMS
	}
	return lm, nil
}
