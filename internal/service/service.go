package service

import (
	"context"
	"path/filepath"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"inferd/internal/config"
	"inferd/internal/conversation"
	"inferd/internal/engine"
	"inferd/internal/monitor"
	"inferd/internal/pool"
	"inferd/internal/recovery"
	"inferd/internal/registry"
	"inferd/pkg/types"
)

// Options bundles the service's construction-time dependencies. Zero
// fields get real implementations: the build's engine backend, the
// system sampler, and a registry under cfg.ModelsDir.
type Options struct {
	Config  config.Config
	Logger  zerolog.Logger
	Backend engine.Backend
	Sampler monitor.Sampler
}

// Service composes the daemon's subsystems and exposes its operations.
type Service struct {
	cfg config.Config
	log zerolog.Logger

	registry *registry.Store
	pool     *pool.Pool
	conv     *conversation.Store
	monitor  *monitor.Monitor
	recovery *recovery.Controller

	capability engine.Capability
	started    time.Time
	status     *gocache.Cache
}

// New wires the subsystems together. The monitor does not start
// sampling until Start is called.
func New(opts Options) (*Service, error) {
	cfg := opts.Config.ApplyDefaults()
	log := opts.Logger

	backend := opts.Backend
	if backend == nil {
		backend = engine.NewLlamaBackend(cfg.CtxSize, cfg.Threads)
	}

	reg, err := registry.Open(cfg.ModelsDir, log.With().Str("component", "registry").Logger())
	if err != nil {
		return nil, err
	}

	sampler := opts.Sampler
	if sampler == nil {
		sampler = monitor.NewSystemSampler(reg.Dir())
	}

	s := &Service{
		cfg:        cfg,
		log:        log,
		registry:   reg,
		conv:       conversation.New(cfg.ConversationWindow, cfg.SystemPrompt),
		capability: backend.Capability(),
		started:    time.Now(),
		status:     gocache.New(cfg.StatusCacheTTL(), 2*cfg.StatusCacheTTL()),
	}

	s.pool = pool.New(pool.Config{
		MaxLoaded:         cfg.MaxLoadedModels,
		MaxConcurrent:     cfg.MaxConcurrent,
		MaxQueueDepth:     cfg.MaxQueueDepth,
		MaxWait:           cfg.MaxWait(),
		StatsPath:         filepath.Join(reg.Dir(), "usage.json"),
		AvailableMemoryMB: monitor.AvailableMemoryMB,
		Backend:           backend,
		Logger:            log.With().Str("component", "pool").Logger(),
	})

	s.recovery = recovery.New(recovery.Config{
		Cooldown:          cfg.RecoveryCooldown(),
		MaxAttempts:       cfg.RecoveryMaxAttempts,
		InactivityTimeout: cfg.InactivityTimeout(),
		Reliever:          s.buildReliever(),
		Logger:            log.With().Str("component", "recovery").Logger(),
	})

	thresholds := make(map[types.ResourceType]types.ResourceThresholds)
	for name, t := range cfg.Thresholds {
		thresholds[types.ResourceType(name)] = t
	}
	s.monitor = monitor.New(monitor.Config{
		Interval:   cfg.MonitorInterval(),
		Thresholds: thresholds,
		Retention:  cfg.HistoryRetention(),
		MaxSamples: cfg.HistoryMaxSamples,
		Sampler:    sampler,
		Logger:     log.With().Str("component", "monitor").Logger(),
	})
	s.monitor.OnAlert(s.onResourceAlert)

	return s, nil
}

// Start begins background resource sampling.
func (s *Service) Start(ctx context.Context) {
	s.monitor.Start(ctx)
	s.log.Info().
		Str("capability", string(s.capability)).
		Int("registered", s.registry.Len()).
		Msg("service started")
}

// Shutdown stops sampling, unloads every model, and flushes usage
// metadata. Safe to call once after Start.
func (s *Service) Shutdown() error {
	s.monitor.Stop()
	unloaded := s.pool.UnloadAll()
	s.pool.SaveUsage()
	s.log.Info().Strs("unloaded", unloaded).Msg("service stopped")
	return nil
}

// Registry exposes the model-config store, mainly for bootstrap scans.
func (s *Service) Registry() *registry.Store { return s.registry }

// EngineCapability reports what the compiled engine can do.
func (s *Service) EngineCapability() engine.Capability { return s.capability }
