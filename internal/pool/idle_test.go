package pool

import (
	"context"
	"testing"
	"time"

	"inferd/pkg/types"
)

func TestReleaseMemory_OldestFirstUpToMax(t *testing.T) {
	p, _ := newTestPool(t, Config{MaxLoaded: 3})
	mustLoad(t, p, "alpha")
	mustLoad(t, p, "beta")
	mustLoad(t, p, "gamma")
	now := time.Now()
	touch(p, "alpha", now.Add(-2*time.Hour))
	touch(p, "beta", now.Add(-90*time.Minute))
	touch(p, "gamma", now.Add(-45*time.Minute))

	got := p.ReleaseMemory(30*time.Minute, 2)
	if len(got) != 2 || got[0] != "alpha" || got[1] != "beta" {
		t.Fatalf("released = %v, want [alpha beta] oldest first", got)
	}
	if !p.Has("gamma") {
		t.Fatal("gamma should survive (max 2 releases)")
	}
}

func TestReleaseMemory_SkipsBusyModels(t *testing.T) {
	h := blockingHandle()
	b := newFakeBackend()
	b.prepared = []*fakeHandle{h}
	p, _ := newTestPool(t, Config{Backend: b, MaxLoaded: 2})
	mustLoad(t, p, "alpha")
	mustLoad(t, p, "beta")
	now := time.Now()
	touch(p, "alpha", now.Add(-2*time.Hour))
	touch(p, "beta", now.Add(-time.Hour))

	done := make(chan error, 1)
	go func() {
		_, err := p.Generate(context.Background(), "alpha", "hi", types.SamplingParams{})
		done <- err
	}()
	<-h.started

	got := p.ReleaseMemory(30*time.Minute, 2)
	if len(got) != 1 || got[0] != "beta" {
		t.Fatalf("released = %v, want [beta] (alpha busy)", got)
	}
	if !p.Has("alpha") {
		t.Fatal("busy model must not be released")
	}

	close(h.gate)
	if err := <-done; err != nil {
		t.Fatalf("generation: %v", err)
	}
}

func TestReleaseMemory_RespectsMinIdle(t *testing.T) {
	p, _ := newTestPool(t, Config{MaxLoaded: 2})
	mustLoad(t, p, "alpha")
	mustLoad(t, p, "beta")
	touch(p, "alpha", time.Now().Add(-10*time.Minute))

	got := p.ReleaseMemory(30*time.Minute, 2)
	if len(got) != 0 {
		t.Fatalf("released = %v, want none (all under min idle)", got)
	}
}

func TestReleaseMemory_ZeroMaxIsNoOp(t *testing.T) {
	p, _ := newTestPool(t, Config{})
	mustLoad(t, p, "alpha")
	touch(p, "alpha", time.Now().Add(-2*time.Hour))
	if got := p.ReleaseMemory(time.Minute, 0); got != nil {
		t.Fatalf("released = %v, want nil", got)
	}
}

func TestEvictIdleLRU_SingleOldest(t *testing.T) {
	p, _ := newTestPool(t, Config{MaxLoaded: 3})
	mustLoad(t, p, "alpha")
	mustLoad(t, p, "beta")
	mustLoad(t, p, "gamma")
	now := time.Now()
	touch(p, "alpha", now.Add(-time.Hour))
	touch(p, "beta", now.Add(-3*time.Hour))
	touch(p, "gamma", now.Add(-2*time.Hour))

	if got := p.EvictIdleLRU(30 * time.Minute); got != "beta" {
		t.Fatalf("evicted = %q, want beta", got)
	}
	if !p.Has("alpha") || !p.Has("gamma") {
		t.Fatal("only the single LRU model should be evicted")
	}
}

func TestEvictIdleLRU_NothingQualifies(t *testing.T) {
	p, _ := newTestPool(t, Config{})
	mustLoad(t, p, "alpha")
	if got := p.EvictIdleLRU(30 * time.Minute); got != "" {
		t.Fatalf("evicted = %q, want none (model recently used)", got)
	}
	if !p.Has("alpha") {
		t.Fatal("alpha should remain loaded")
	}
}
