package pool

import (
	"context"
	"time"

	"inferd/internal/engine"
)

// admit reserves, in order: a per-model queue slot, the model's single
// in-flight slot, and one global allowance slot. It pins the model's
// handle with a reference count and returns it with a release func to
// be deferred. Each stage respects ctx and the configured wait budget.
func (p *Pool) admit(ctx context.Context, id string) (*LoadedModel, engine.Handle, func(), error) {
	p.mu.RLock()
	lm := p.models[id]
	p.mu.RUnlock()
	if lm == nil {
		return nil, nil, nil, ErrNotLoaded(id)
	}

	// Fast path: respect an already-canceled context.
	if err := ctx.Err(); err != nil {
		return nil, nil, nil, err
	}

	// Stage 1: queue slot.
	timer := time.NewTimer(p.cfg.MaxWait)
	defer timer.Stop()
	select {
	case lm.queueCh <- struct{}{}:
	case <-ctx.Done():
		return nil, nil, nil, ctx.Err()
	case <-timer.C:
		busyTotal.WithLabelValues(id, "queue_full").Inc()
		return nil, nil, nil, tooBusyError{modelID: id}
	}

	// Every slot acquired from here on rolls back unless admission
	// commits; after commit the release func owns them until the
	// generation finishes.
	haveGen, haveGlobal, committed := false, false, false
	defer func() {
		if committed {
			return
		}
		if haveGlobal {
			<-p.globalCh
		}
		if haveGen {
			<-lm.genCh
		}
		<-lm.queueCh
	}()

	// Stage 2: the model's single in-flight slot.
	timer2 := time.NewTimer(p.cfg.MaxWait)
	defer timer2.Stop()
	select {
	case lm.genCh <- struct{}{}:
		haveGen = true
	case <-ctx.Done():
		return nil, nil, nil, ctx.Err()
	case <-timer2.C:
		busyTotal.WithLabelValues(id, "inflight_wait").Inc()
		return nil, nil, nil, tooBusyError{modelID: id}
	}

	// Stage 3: global allowance across all models.
	timer3 := time.NewTimer(p.cfg.MaxWait)
	defer timer3.Stop()
	select {
	case p.globalCh <- struct{}{}:
		haveGlobal = true
	case <-ctx.Done():
		return nil, nil, nil, ctx.Err()
	case <-timer3.C:
		busyTotal.WithLabelValues(id, "allowance_wait").Inc()
		return nil, nil, nil, tooBusyError{modelID: id}
	}

	// Pin the handle. The model may have been unloaded while we queued.
	p.mu.Lock()
	if lm.closed || lm.handle == nil {
		p.mu.Unlock()
		return nil, nil, nil, ErrNotLoaded(id)
	}
	lm.refs++
	lm.LastUsed = time.Now()
	handle := lm.handle
	p.mu.Unlock()

	committed = true
	release := func() {
		p.mu.Lock()
		lm.refs--
		toClose := engine.Handle(nil)
		if lm.closed && lm.refs == 0 && lm.handle != nil {
			toClose = lm.handle
			lm.handle = nil
		}
		p.mu.Unlock()
		p.releaseHandle(id, toClose)
		<-p.globalCh
		<-lm.genCh
		<-lm.queueCh
	}
	return lm, handle, release, nil
}

// ReduceConcurrency permanently withholds one global allowance slot,
// shrinking how many generations may run at once. At least one usable
// slot always remains; returns false when no further reduction is
// possible. Slots are returned only by process restart.
func (p *Pool) ReduceConcurrency() bool {
	p.mu.Lock()
	if p.reserved >= p.cfg.MaxConcurrent-1 {
		p.mu.Unlock()
		return false
	}
	p.reserved++
	reserved := p.reserved
	p.mu.Unlock()

	// Occupy the slot as soon as in-flight work frees one.
	go func() { p.globalCh <- struct{}{} }()

	p.cfg.Logger.Warn().
		Int("reserved", reserved).
		Int("max_concurrent", p.cfg.MaxConcurrent).
		Msg("generation concurrency reduced")
	return true
}

// PreferCPUOnly makes subsequent loads skip GPU offload. Returns false
// when loads were already CPU-bound, either by an earlier call or
// because the engine has no GPU capability at all.
func (p *Pool) PreferCPUOnly() bool {
	if p.cfg.Backend.Capability() != engine.CapabilityGPU {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cpuOnly {
		return false
	}
	p.cpuOnly = true
	p.cfg.Logger.Warn().Msg("subsequent model loads will prefer cpu only")
	return true
}
