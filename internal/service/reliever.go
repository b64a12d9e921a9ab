package service

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"inferd/internal/common/fsutil"
	"inferd/internal/pool"
	"inferd/internal/recovery"
)

// cacheMaxAge is how old a cache file must be before disk recovery may
// remove it. Young files are likely still in use.
const cacheMaxAge = time.Hour

// buildReliever picks the mitigation surface handed to recovery. The
// pool covers memory, CPU, and GPU; when a cache directory is
// configured we also satisfy the optional disk-cleanup hook.
func (s *Service) buildReliever() recovery.Reliever {
	if s.cfg.CacheDir == "" {
		return s.pool
	}
	dir, err := fsutil.ExpandHome(s.cfg.CacheDir)
	if err != nil {
		s.log.Warn().Err(err).Msg("cache dir unusable; disk recovery disabled")
		return s.pool
	}
	return &cacheCleaningReliever{
		Pool:     s.pool,
		cacheDir: dir,
		log:      s.log.With().Str("component", "recovery").Logger(),
	}
}

// cacheCleaningReliever extends the pool's mitigations with disk cache
// cleanup under the configured cache directory.
type cacheCleaningReliever struct {
	*pool.Pool
	cacheDir string
	log      zerolog.Logger
}

// CleanupDisk removes cache files older than cacheMaxAge and reports
// the bytes freed. Subdirectories are walked; empty results are not an
// error — the caller treats zero freed bytes as a failed mitigation.
func (r *cacheCleaningReliever) CleanupDisk() (int64, error) {
	var freed int64
	var removed int
	err := filepath.Walk(r.cacheDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if info.IsDir() {
			return nil
		}
		if time.Since(info.ModTime()) < cacheMaxAge {
			return nil
		}
		size := info.Size()
		if rmErr := os.Remove(path); rmErr != nil {
			r.log.Warn().Err(rmErr).Str("path", path).Msg("cache file removal failed")
			return nil
		}
		freed += size
		removed++
		return nil
	})
	if err != nil {
		return freed, err
	}
	if removed > 0 {
		r.log.Info().Int("files", removed).Int64("bytes", freed).Msg("cleaned disk cache")
	}
	return freed, nil
}
