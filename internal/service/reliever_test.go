package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"inferd/internal/config"
	"inferd/internal/recovery"
)

func writeAged(t *testing.T, dir, name string, age time.Duration, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
	stamp := time.Now().Add(-age)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCleanupDisk_RemovesOnlyOldFiles(t *testing.T) {
	dir := t.TempDir()
	old := writeAged(t, dir, "stale.bin", 2*time.Hour, 4096)
	sub := filepath.Join(dir, "nested")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	oldNested := writeAged(t, sub, "stale2.bin", 3*time.Hour, 1024)
	fresh := writeAged(t, dir, "fresh.bin", time.Minute, 2048)

	r := &cacheCleaningReliever{cacheDir: dir, log: zerolog.Nop()}
	freed, err := r.CleanupDisk()
	if err != nil {
		t.Fatalf("CleanupDisk: %v", err)
	}
	if freed != 4096+1024 {
		t.Fatalf("freed = %d, want 5120", freed)
	}
	for _, gone := range []string{old, oldNested} {
		if _, err := os.Stat(gone); !os.IsNotExist(err) {
			t.Fatalf("%s should be removed", gone)
		}
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh file should survive: %v", err)
	}
}

func TestCleanupDisk_NothingOldFreesZero(t *testing.T) {
	dir := t.TempDir()
	writeAged(t, dir, "fresh.bin", time.Minute, 512)
	r := &cacheCleaningReliever{cacheDir: dir, log: zerolog.Nop()}
	freed, err := r.CleanupDisk()
	if err != nil || freed != 0 {
		t.Fatalf("CleanupDisk = (%d, %v), want (0, nil)", freed, err)
	}
}

func TestBuildReliever_DiskHookOnlyWithCacheDir(t *testing.T) {
	s, _, _ := newService(t, nil)
	if _, ok := s.buildReliever().(recovery.DiskCleaner); ok {
		t.Fatal("no cache dir configured: the reliever must not offer disk cleanup")
	}

	s2, _, _ := newService(t, func(c *config.Config) { c.CacheDir = t.TempDir() })
	if _, ok := s2.buildReliever().(recovery.DiskCleaner); !ok {
		t.Fatal("cache dir configured: the reliever should offer disk cleanup")
	}
}
