package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"inferd/pkg/types"
)

// ScanDefaults are applied to models discovered by ScanDir.
type ScanDefaults struct {
	CtxSize int
	Threads int
}

// ScanDir walks the models directory for *.gguf files and registers any not
// yet present, using the filename (without extension) as the id. Existing
// records are never overwritten by a scan. Returns the ids added.
func (s *Store) ScanDir(def ScanDefaults) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read models dir: %w", err)
	}
	var added []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".gguf") {
			continue
		}
		id := strings.TrimSuffix(name, filepath.Ext(name))
		if _, ok := s.Get(id); ok {
			continue
		}
		cfg := types.ModelConfig{
			ID:      id,
			Name:    id,
			Path:    filepath.Join(s.dir, name),
			CtxSize: def.CtxSize,
			Threads: def.Threads,
		}
		if err := s.Register(cfg); err != nil {
			s.log.Warn().Err(err).Str("file", name).Msg("scan: skipping model file")
			continue
		}
		added = append(added, id)
	}
	if len(added) > 0 {
		s.log.Info().Int("added", len(added)).Msg("models dir scan complete")
	}
	return added, nil
}
