package service

import (
	"context"
	"testing"

	"inferd/internal/config"
	"inferd/internal/pool"
	"inferd/internal/registry"
	"inferd/pkg/types"
)

// The full happy path: register, load, generate, unload, and then a
// generate that must fail because nothing is loaded anymore.
func TestService_RegisterLoadGenerateUnload(t *testing.T) {
	s, b, dir := newService(t, nil)
	registerModel(t, s, dir, "alpha")

	ok, err := s.LoadModel(context.Background(), "alpha", false)
	if err != nil || !ok {
		t.Fatalf("LoadModel = (%v, %v), want (true, nil)", ok, err)
	}

	res, err := s.Generate(context.Background(), types.GenerateRequest{Query: "hello"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.ModelID != "alpha" || res.Text != "scripted answer" || res.SessionID == "" {
		t.Fatalf("result = %+v", res)
	}
	if res.Usage.CompletionTokens != 4 {
		t.Fatalf("usage = %+v", res.Usage)
	}
	if got := len(s.History(res.SessionID)); got != 3 {
		t.Fatalf("history = %d messages, want 3 (preamble + exchange)", got)
	}

	ok, err = s.UnloadModel("alpha")
	if err != nil || !ok {
		t.Fatalf("UnloadModel = (%v, %v), want (true, nil)", ok, err)
	}
	if !b.handle(0).isClosed() {
		t.Fatal("engine handle should be closed after unload")
	}
	if got := s.pool.Active(); got != "" {
		t.Fatalf("active = %q, want empty after the only model unloads", got)
	}

	_, err = s.Generate(context.Background(), types.GenerateRequest{Query: "anyone there?"})
	if !pool.IsNotLoaded(err) {
		t.Fatalf("generate after unload = %v, want no-model-loaded", err)
	}
	if err.Error() != "no model loaded" {
		t.Fatalf("message = %q", err.Error())
	}
	if !IsUnavailable(err) {
		t.Fatal("no-model-loaded belongs to the unavailable class")
	}
}

func TestService_RegisterAppliesEngineDefaults(t *testing.T) {
	s, _, dir := newService(t, nil)
	path := writeModel(t, dir, "bare")
	if err := s.RegisterModel(types.ModelConfig{ID: "bare", Path: path}); err != nil {
		t.Fatalf("RegisterModel: %v", err)
	}
	cfg, ok := s.Registry().Get("bare")
	if !ok {
		t.Fatal("model not registered")
	}
	if cfg.CtxSize != 2048 || cfg.Threads != 4 {
		t.Fatalf("defaults not applied: ctx=%d threads=%d", cfg.CtxSize, cfg.Threads)
	}
}

func TestService_LoadUnknownModel(t *testing.T) {
	s, _, _ := newService(t, nil)
	_, err := s.LoadModel(context.Background(), "ghost", false)
	if !registry.IsNotRegistered(err) {
		t.Fatalf("expected not-registered, got %v", err)
	}
}

func TestService_LoadForceOverridesCap(t *testing.T) {
	s, _, dir := newService(t, func(c *config.Config) { c.MaxLoadedModels = 1 })
	registerModel(t, s, dir, "alpha")
	registerModel(t, s, dir, "beta")
	if _, err := s.LoadModel(context.Background(), "alpha", false); err != nil {
		t.Fatalf("LoadModel: %v", err)
	}

	_, err := s.LoadModel(context.Background(), "beta", false)
	if !pool.IsCapacityExceeded(err) {
		t.Fatalf("expected capacity error, got %v", err)
	}

	ok, err := s.LoadModel(context.Background(), "beta", true)
	if err != nil || !ok {
		t.Fatalf("forced load = (%v, %v)", ok, err)
	}
	if got := len(s.LoadedModels()); got != 2 {
		t.Fatalf("loaded = %d, want 2", got)
	}
}

func TestService_HotSwap(t *testing.T) {
	s, _, dir := newService(t, nil)
	registerModel(t, s, dir, "alpha")
	registerModel(t, s, dir, "beta")
	if _, err := s.LoadModel(context.Background(), "alpha", false); err != nil {
		t.Fatalf("LoadModel: %v", err)
	}

	if err := s.HotSwap(context.Background(), "alpha", "beta"); err != nil {
		t.Fatalf("HotSwap: %v", err)
	}
	res, err := s.Generate(context.Background(), types.GenerateRequest{Query: "who serves?"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.ModelID != "beta" {
		t.Fatalf("served by %q, want beta after swap", res.ModelID)
	}

	if err := s.HotSwap(context.Background(), "", "ghost"); !registry.IsNotRegistered(err) {
		t.Fatalf("swap to unknown = %v, want not-registered", err)
	}
	if got := s.pool.Active(); got != "beta" {
		t.Fatalf("active = %q, want beta (failed swap must not move the pointer)", got)
	}
}

func TestService_UpdateModelConfig(t *testing.T) {
	s, b, dir := newService(t, nil)
	registerModel(t, s, dir, "alpha")
	if _, err := s.LoadModel(context.Background(), "alpha", false); err != nil {
		t.Fatalf("LoadModel: %v", err)
	}

	name := "Alpha Prime"
	cfg, err := s.UpdateModelConfig(context.Background(), "alpha", types.ModelConfigUpdate{Name: &name})
	if err != nil {
		t.Fatalf("UpdateModelConfig: %v", err)
	}
	if cfg.Name != "Alpha Prime" {
		t.Fatalf("name = %q", cfg.Name)
	}
	if b.loads() != 1 {
		t.Fatalf("loads = %d, want 1 (cosmetic update, no rebuild)", b.loads())
	}

	ctxSize := 8192
	cfg, err = s.UpdateModelConfig(context.Background(), "alpha", types.ModelConfigUpdate{CtxSize: &ctxSize})
	if err != nil {
		t.Fatalf("UpdateModelConfig structural: %v", err)
	}
	if cfg.CtxSize != 8192 {
		t.Fatalf("ctx_size = %d", cfg.CtxSize)
	}
	if b.loads() != 2 {
		t.Fatalf("loads = %d, want 2 (structural reload)", b.loads())
	}
	if !b.handle(0).isClosed() {
		t.Fatal("old handle should be released by the rebuild")
	}

	// Persisted too, not just applied to the live pool.
	stored, _ := s.Registry().Get("alpha")
	if stored.CtxSize != 8192 || stored.Name != "Alpha Prime" {
		t.Fatalf("stored = %+v", stored)
	}
}

func TestService_UpdateConfigOfUnloadedModelOnlyPersists(t *testing.T) {
	s, b, dir := newService(t, nil)
	registerModel(t, s, dir, "alpha")
	ctxSize := 4096
	if _, err := s.UpdateModelConfig(context.Background(), "alpha", types.ModelConfigUpdate{CtxSize: &ctxSize}); err != nil {
		t.Fatalf("UpdateModelConfig: %v", err)
	}
	if b.loads() != 0 {
		t.Fatalf("loads = %d, want 0 (model not loaded)", b.loads())
	}
	stored, _ := s.Registry().Get("alpha")
	if stored.CtxSize != 4096 {
		t.Fatalf("stored ctx_size = %d", stored.CtxSize)
	}
}

func TestService_UpdateUnknownModel(t *testing.T) {
	s, _, _ := newService(t, nil)
	n := "x"
	_, err := s.UpdateModelConfig(context.Background(), "ghost", types.ModelConfigUpdate{Name: &n})
	if !registry.IsNotRegistered(err) {
		t.Fatalf("expected not-registered, got %v", err)
	}
}

func TestService_AvailableModelsAnnotations(t *testing.T) {
	s, _, dir := newService(t, nil)
	registerModel(t, s, dir, "alpha")
	registerModel(t, s, dir, "beta")
	if _, err := s.LoadModel(context.Background(), "alpha", false); err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	if _, err := s.Generate(context.Background(), types.GenerateRequest{Query: "hi"}); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	models := s.AvailableModels()
	if len(models) != 2 {
		t.Fatalf("models = %d, want 2", len(models))
	}
	alpha, beta := models[0], models[1]
	if alpha.ID != "alpha" || !alpha.Loaded || !alpha.Active {
		t.Fatalf("alpha = %+v", alpha)
	}
	if alpha.Usage == nil || alpha.Usage.Queries != 1 {
		t.Fatalf("alpha usage = %+v", alpha.Usage)
	}
	if beta.Loaded || beta.Active || beta.Usage != nil {
		t.Fatalf("beta = %+v", beta)
	}
}
