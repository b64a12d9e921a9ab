package service

import (
	"context"

	"inferd/internal/registry"
	"inferd/pkg/types"
)

// RegisterModel validates and persists a model config. Context size and
// thread count fall back to the service defaults when unset.
func (s *Service) RegisterModel(cfg types.ModelConfig) error {
	if cfg.CtxSize <= 0 {
		cfg.CtxSize = s.cfg.CtxSize
	}
	if cfg.Threads <= 0 {
		cfg.Threads = s.cfg.Threads
	}
	return s.registry.Register(cfg)
}

// LoadModel loads a registered model into the pool. force overrides the
// loaded-model cap. Returns false when the model was already loaded.
func (s *Service) LoadModel(ctx context.Context, id string, force bool) (bool, error) {
	cfg, ok := s.registry.Get(id)
	if !ok {
		return false, registry.ErrNotRegistered(id)
	}
	return s.pool.Load(ctx, cfg, force)
}

// UnloadModel removes a model from the pool. Returns false when it was
// not loaded; never an error for that case.
func (s *Service) UnloadModel(id string) (bool, error) {
	return s.pool.Unload(id)
}

// HotSwap makes `to` the active model, loading it first if necessary.
// The previous model stays loaded. A non-empty `from` must name the
// currently active model.
func (s *Service) HotSwap(ctx context.Context, from, to string) error {
	cfg, ok := s.registry.Get(to)
	if !ok {
		return registry.ErrNotRegistered(to)
	}
	return s.pool.HotSwap(ctx, from, cfg)
}

// UpdateModelConfig persists a partial config update and, when the
// model is loaded, applies it: structural changes rebuild the engine
// handle; cosmetic ones apply in place.
func (s *Service) UpdateModelConfig(ctx context.Context, id string, upd types.ModelConfigUpdate) (types.ModelConfig, error) {
	cfg, err := s.registry.Update(id, func(c *types.ModelConfig) { upd.Apply(c) })
	if err != nil {
		return types.ModelConfig{}, err
	}
	if err := s.pool.ApplyConfig(ctx, cfg, upd.Structural()); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadedModels lists the pool's models, including any mid-load.
func (s *Service) LoadedModels() []types.LoadedModelStatus {
	return s.pool.Status().Models
}

// AvailableModels lists every registered model annotated with pool
// state and lifetime usage.
func (s *Service) AvailableModels() []types.AvailableModel {
	active := s.pool.Active()
	regs := s.registry.List()
	out := make([]types.AvailableModel, 0, len(regs))
	for _, cfg := range regs {
		am := types.AvailableModel{
			ModelConfig: cfg,
			Loaded:      s.pool.Has(cfg.ID),
			Active:      cfg.ID == active,
		}
		if u, ok := s.pool.UsageFor(cfg.ID); ok {
			am.Usage = &u
		}
		out = append(out, am)
	}
	return out
}
