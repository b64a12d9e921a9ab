package pool

import (
	"context"
	"testing"
	"time"

	"inferd/pkg/types"
)

func TestUnload_NotLoadedIsNoOp(t *testing.T) {
	p, _ := newTestPool(t, Config{})
	ok, err := p.Unload("ghost")
	if ok || err != nil {
		t.Fatalf("Unload(ghost) = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestUnload_EmptyIDIsNoOp(t *testing.T) {
	p, _ := newTestPool(t, Config{})
	ok, err := p.Unload("")
	if ok || err != nil {
		t.Fatalf("Unload(\"\") = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestUnload_ClosesHandleWhenIdle(t *testing.T) {
	p, b := newTestPool(t, Config{})
	mustLoad(t, p, "alpha")
	ok, err := p.Unload("alpha")
	if err != nil || !ok {
		t.Fatalf("Unload = (%v, %v), want (true, nil)", ok, err)
	}
	if !b.handle(0).isClosed() {
		t.Fatal("idle unload must close the engine handle immediately")
	}
	if p.Has("alpha") || p.Active() != "" {
		t.Fatalf("pool should be empty; has=%v active=%q", p.Has("alpha"), p.Active())
	}
}

func TestUnload_RepointsActiveToMostRecentlyUsed(t *testing.T) {
	p, _ := newTestPool(t, Config{MaxLoaded: 3})
	mustLoad(t, p, "alpha")
	mustLoad(t, p, "beta")
	mustLoad(t, p, "gamma")
	now := time.Now()
	touch(p, "beta", now.Add(-time.Minute))
	touch(p, "gamma", now.Add(-time.Hour))

	if _, err := p.Unload("alpha"); err != nil {
		t.Fatalf("Unload: %v", err)
	}
	if got := p.Active(); got != "beta" {
		t.Fatalf("active = %q, want beta (most recently used remaining)", got)
	}
}

func TestUnload_NonActiveKeepsActive(t *testing.T) {
	p, _ := newTestPool(t, Config{MaxLoaded: 2})
	mustLoad(t, p, "alpha")
	mustLoad(t, p, "beta")
	if _, err := p.Unload("beta"); err != nil {
		t.Fatalf("Unload: %v", err)
	}
	if got := p.Active(); got != "alpha" {
		t.Fatalf("active = %q, want alpha", got)
	}
}

func TestUnload_DeferredCloseWithInflightGeneration(t *testing.T) {
	h := blockingHandle()
	b := newFakeBackend()
	b.prepared = []*fakeHandle{h}
	p, _ := newTestPool(t, Config{Backend: b})
	mustLoad(t, p, "alpha")

	done := make(chan error, 1)
	go func() {
		_, err := p.Generate(context.Background(), "alpha", "hi", types.SamplingParams{})
		done <- err
	}()
	<-h.started

	ok, err := p.Unload("alpha")
	if err != nil || !ok {
		t.Fatalf("Unload during inference = (%v, %v), want (true, nil)", ok, err)
	}
	if p.Has("alpha") {
		t.Fatal("model must leave the pool immediately")
	}
	if h.isClosed() {
		t.Fatal("handle must not close while a generation is in flight")
	}

	close(h.gate)
	if err := <-done; err != nil {
		t.Fatalf("in-flight generation should complete: %v", err)
	}
	waitUntil(t, time.Second, h.isClosed)
}

func TestUnloadAll_DrainsPool(t *testing.T) {
	p, _ := newTestPool(t, Config{MaxLoaded: 3})
	mustLoad(t, p, "alpha")
	mustLoad(t, p, "beta")
	got := p.UnloadAll()
	if len(got) != 2 || got[0] != "alpha" || got[1] != "beta" {
		t.Fatalf("UnloadAll = %v, want [alpha beta]", got)
	}
	if p.Len() != 0 || p.Active() != "" {
		t.Fatalf("pool should be empty; len=%d active=%q", p.Len(), p.Active())
	}
}
