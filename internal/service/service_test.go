package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"inferd/internal/config"
	"inferd/internal/engine"
	"inferd/internal/monitor"
	"inferd/pkg/types"
)

// svcHandle is a scripted engine handle recording every prompt.
type svcHandle struct {
	mu      sync.Mutex
	reply   string
	err     error
	closed  bool
	prompts []string
}

func (h *svcHandle) Complete(ctx context.Context, prompt string, params types.SamplingParams) (engine.Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.prompts = append(h.prompts, prompt)
	if h.err != nil {
		return engine.Result{}, h.err
	}
	return engine.Result{
		Text:         h.reply,
		Usage:        types.Usage{PromptTokens: 2, CompletionTokens: 4, TotalTokens: 6},
		FinishReason: "stop",
	}, nil
}

func (h *svcHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

func (h *svcHandle) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func (h *svcHandle) lastPrompt() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.prompts) == 0 {
		return ""
	}
	return h.prompts[len(h.prompts)-1]
}

type svcBackend struct {
	mu      sync.Mutex
	reply   string
	loadErr error
	handles []*svcHandle
}

func newSvcBackend() *svcBackend { return &svcBackend{reply: "scripted answer"} }

func (b *svcBackend) Load(ctx context.Context, cfg types.ModelConfig) (engine.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	h := &svcHandle{reply: b.reply}
	b.handles = append(b.handles, h)
	return h, nil
}

func (b *svcBackend) Capability() engine.Capability { return engine.CapabilityGPU }

func (b *svcBackend) handle(i int) *svcHandle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handles[i]
}

func (b *svcBackend) loads() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handles)
}

// scriptedSampler serves one queued sample set per tick, then nothing.
type scriptedSampler struct {
	mu    sync.Mutex
	queue [][]types.ResourceMetric
}

func (s *scriptedSampler) push(ms ...types.ResourceMetric) {
	s.mu.Lock()
	s.queue = append(s.queue, ms)
	s.mu.Unlock()
}

func (s *scriptedSampler) Sample(ctx context.Context) []types.ResourceMetric {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return nil
	}
	ms := s.queue[0]
	s.queue = s.queue[1:]
	return ms
}

func memSample(pct float64) types.ResourceMetric {
	return types.ResourceMetric{Resource: types.ResourceMemory, UsagePercent: pct, AvailableMB: 1024, TotalMB: 8192}
}

func writeModel(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name+".gguf")
	if err := os.WriteFile(path, []byte("GGUF fake weights"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// newService builds a Service on a temp models dir with a scripted
// backend. mutate may adjust the config before construction.
func newService(t *testing.T, mutate func(*config.Config)) (*Service, *svcBackend, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Config{
		ModelsDir:          dir,
		MaxLoadedModels:    2,
		ConversationWindow: 3,
		SystemPrompt:       "You are a test assistant.",
	}
	if mutate != nil {
		mutate(&cfg)
	}
	b := newSvcBackend()
	s, err := New(Options{
		Config:  cfg,
		Logger:  zerolog.Nop(),
		Backend: b,
		Sampler: &scriptedSampler{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, b, dir
}

func registerModel(t *testing.T, s *Service, dir, id string) {
	t.Helper()
	path := writeModel(t, dir, id)
	if err := s.RegisterModel(types.ModelConfig{ID: id, Path: path}); err != nil {
		t.Fatalf("RegisterModel(%s): %v", id, err)
	}
}

// fastMonitor swaps in a monitor with a short tick so loop-driven tests
// finish quickly. Must run before Start.
func fastMonitor(s *Service, sampler monitor.Sampler, interval time.Duration) {
	s.monitor = monitor.New(monitor.Config{
		Interval:   interval,
		Retention:  time.Hour,
		MaxSamples: 100,
		Sampler:    sampler,
		Logger:     zerolog.Nop(),
	})
	s.monitor.OnAlert(s.onResourceAlert)
}

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
