// Package registry persists model configurations. Records live as one flat
// JSON document keyed by model id at <models-dir>/registry.json, durable
// across restarts. ScanDir additionally discovers loose *.gguf files so a
// freshly imaged appliance starts with a usable registry.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"inferd/internal/common/fsutil"
	"inferd/pkg/types"
)

const registryFile = "registry.json"

// Store is the durable model-config registry.
type Store struct {
	mu     sync.RWMutex
	dir    string // absolute models directory
	path   string // registry.json inside dir
	models map[string]types.ModelConfig
	log    zerolog.Logger
}

// Open binds a store to the given models directory, creating the directory
// if needed and loading any persisted records.
func Open(dir string, log zerolog.Logger) (*Store, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	if err := fsutil.EnsureDir(abs); err != nil {
		return nil, fmt.Errorf("models dir: %w", err)
	}
	s := &Store{
		dir:    abs,
		path:   filepath.Join(abs, registryFile),
		models: make(map[string]types.ModelConfig),
		log:    log,
	}
	if err := s.loadFile(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the absolute models directory the store is bound to.
func (s *Store) Dir() string { return s.dir }

// Register validates and persists a model config. The id must be non-empty
// and the model file must exist; a missing file fails in the not-registered
// class. Re-registering an existing id overwrites the record.
func (s *Store) Register(cfg types.ModelConfig) error {
	if cfg.ID == "" {
		return errors.New("model id is empty")
	}
	if cfg.Path == "" {
		return ErrMissingModelFile(cfg.ID, "(empty path)")
	}
	p, err := fsutil.ExpandHome(cfg.Path)
	if err != nil {
		return err
	}
	if !fsutil.PathExists(p) {
		return ErrMissingModelFile(cfg.ID, p)
	}
	cfg.Path = p

	s.mu.Lock()
	s.models[cfg.ID] = cfg
	err = s.persistLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.log.Info().Str("model", cfg.ID).Str("path", cfg.Path).Msg("model registered")
	return nil
}

// Get returns the config for id.
func (s *Store) Get(id string) (types.ModelConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.models[id]
	return cfg, ok
}

// List returns all registered configs sorted by id.
func (s *Store) List() []types.ModelConfig {
	s.mu.RLock()
	out := make([]types.ModelConfig, 0, len(s.models))
	for _, cfg := range s.models {
		out = append(out, cfg)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered models.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.models)
}

// Update mutates the record for id through fn and persists the result.
// Returns the updated config.
func (s *Store) Update(id string, fn func(*types.ModelConfig)) (types.ModelConfig, error) {
	s.mu.Lock()
	cfg, ok := s.models[id]
	if !ok {
		s.mu.Unlock()
		return types.ModelConfig{}, ErrNotRegistered(id)
	}
	fn(&cfg)
	cfg.ID = id // the key is immutable
	s.models[id] = cfg
	err := s.persistLocked()
	s.mu.Unlock()
	if err != nil {
		return types.ModelConfig{}, err
	}
	return cfg, nil
}

// loadFile reads registry.json if present. A missing file is a fresh store.
func (s *Store) loadFile() error {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open registry: %w", err)
	}
	defer f.Close()
	var data map[string]types.ModelConfig
	if err := json.NewDecoder(f).Decode(&data); err != nil {
		return fmt.Errorf("decode registry: %w", err)
	}
	for id, cfg := range data {
		cfg.ID = id
		s.models[id] = cfg
	}
	return nil
}

// persistLocked writes the full map. Caller holds s.mu.
func (s *Store) persistLocked() error {
	b, err := json.MarshalIndent(s.models, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}
