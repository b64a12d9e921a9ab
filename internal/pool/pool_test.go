package pool

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"inferd/internal/engine"
	"inferd/pkg/types"
)

// fakeHandle is a scriptable engine.Handle. When gate is non-nil,
// Complete blocks on it (or ctx) after closing started.
type fakeHandle struct {
	mu        sync.Mutex
	completes int
	closed    bool
	gotParams []types.SamplingParams

	result engine.Result
	err    error

	started chan struct{}
	gate    chan struct{}
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{
		result: engine.Result{
			Text:         "ok",
			Usage:        types.Usage{PromptTokens: 3, CompletionTokens: 5, TotalTokens: 8},
			FinishReason: "stop",
		},
	}
}

func blockingHandle() *fakeHandle {
	h := newFakeHandle()
	h.started = make(chan struct{})
	h.gate = make(chan struct{})
	return h
}

func (h *fakeHandle) Complete(ctx context.Context, prompt string, params types.SamplingParams) (engine.Result, error) {
	h.mu.Lock()
	h.completes++
	h.gotParams = append(h.gotParams, params)
	started, gate := h.started, h.gate
	h.started = nil // signal at most once
	h.mu.Unlock()
	if started != nil {
		close(started)
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return engine.Result{}, ctx.Err()
		}
	}
	if h.err != nil {
		return engine.Result{}, h.err
	}
	return h.result, nil
}

func (h *fakeHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

func (h *fakeHandle) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func (h *fakeHandle) completions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.completes
}

func (h *fakeHandle) lastParams() types.SamplingParams {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.gotParams) == 0 {
		return types.SamplingParams{}
	}
	return h.gotParams[len(h.gotParams)-1]
}

// fakeBackend hands out fakeHandles and records every load.
type fakeBackend struct {
	mu         sync.Mutex
	capability engine.Capability
	loadErr    error
	prepared   []*fakeHandle
	handles    []*fakeHandle
	gotConfigs []types.ModelConfig

	loadStarted chan struct{} // closed on first Load entry when set
	loadGate    chan struct{} // Load blocks until closed when set
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{capability: engine.CapabilityGPU}
}

func (b *fakeBackend) Load(ctx context.Context, cfg types.ModelConfig) (engine.Handle, error) {
	b.mu.Lock()
	b.gotConfigs = append(b.gotConfigs, cfg)
	started, gate := b.loadStarted, b.loadGate
	b.loadStarted = nil
	b.mu.Unlock()
	if started != nil {
		close(started)
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	var h *fakeHandle
	if len(b.prepared) > 0 {
		h = b.prepared[0]
		b.prepared = b.prepared[1:]
	} else {
		h = newFakeHandle()
	}
	b.handles = append(b.handles, h)
	return h, nil
}

func (b *fakeBackend) Capability() engine.Capability { return b.capability }

func (b *fakeBackend) loads() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.gotConfigs)
}

func (b *fakeBackend) handle(i int) *fakeHandle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handles[i]
}

func newTestPool(t *testing.T, cfg Config) (*Pool, *fakeBackend) {
	t.Helper()
	var b *fakeBackend
	if cfg.Backend == nil {
		b = newFakeBackend()
		cfg.Backend = b
	} else if fb, ok := cfg.Backend.(*fakeBackend); ok {
		b = fb
	}
	cfg.Logger = zerolog.Nop()
	return New(cfg), b
}

func modelCfg(id string) types.ModelConfig {
	return types.ModelConfig{ID: id, Path: "/models/" + id + ".gguf", CtxSize: 2048, GPULayers: 20}
}

func mustLoad(t *testing.T, p *Pool, id string) {
	t.Helper()
	ok, err := p.Load(context.Background(), modelCfg(id), false)
	if err != nil {
		t.Fatalf("Load(%s): %v", id, err)
	}
	if !ok {
		t.Fatalf("Load(%s): expected fresh load", id)
	}
}

// waitUntil polls cond until it holds or the deadline passes.
func waitUntil(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not reached within %v", d)
}

// touch rewrites a loaded model's LastUsed for eviction-order tests.
func touch(p *Pool, id string, at time.Time) {
	p.mu.Lock()
	if lm, ok := p.models[id]; ok {
		lm.LastUsed = at
	}
	p.mu.Unlock()
}
