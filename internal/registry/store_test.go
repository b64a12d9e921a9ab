package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"inferd/pkg/types"
)

// helper: create a model file of approximately sizeMB megabytes
func createModelFile(t *testing.T, dir, name string, sizeMB int) string {
	t.Helper()
	if sizeMB <= 0 {
		sizeMB = 1
	}
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	defer f.Close()
	block := make([]byte, 1024*1024)
	for i := 0; i < sizeMB; i++ {
		if _, err := f.Write(block); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return p
}

func openStore(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := Open(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func TestRegisterAndGet(t *testing.T) {
	dir := t.TempDir()
	p := createModelFile(t, dir, "m1.gguf", 1)
	s := openStore(t, dir)

	cfg := types.ModelConfig{ID: "m1", Path: p, CtxSize: 2048}
	if err := s.Register(cfg); err != nil {
		t.Fatalf("register: %v", err)
	}
	got, ok := s.Get("m1")
	if !ok || got.Path != p || got.CtxSize != 2048 {
		t.Fatalf("unexpected record: %+v ok=%v", got, ok)
	}
}

func TestRegisterMissingFileNotRegisteredClass(t *testing.T) {
	s := openStore(t, t.TempDir())
	err := s.Register(types.ModelConfig{ID: "ghost", Path: "/nope/ghost.gguf"})
	if err == nil || !IsNotRegistered(err) {
		t.Fatalf("expected not-registered class error, got %v", err)
	}
}

func TestRegisterEmptyID(t *testing.T) {
	s := openStore(t, t.TempDir())
	if err := s.Register(types.ModelConfig{Path: "/tmp/x.gguf"}); err == nil {
		t.Fatalf("expected error for empty id")
	}
}

func TestPersistAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	p := createModelFile(t, dir, "m1.gguf", 1)
	s := openStore(t, dir)
	if err := s.Register(types.ModelConfig{ID: "m1", Path: p, GPULayers: 12}); err != nil {
		t.Fatalf("register: %v", err)
	}

	s2 := openStore(t, dir)
	got, ok := s2.Get("m1")
	if !ok || got.GPULayers != 12 {
		t.Fatalf("expected persisted record after reopen, got %+v ok=%v", got, ok)
	}
}

func TestUpdatePersistsAndKeepsKey(t *testing.T) {
	dir := t.TempDir()
	p := createModelFile(t, dir, "m1.gguf", 1)
	s := openStore(t, dir)
	if err := s.Register(types.ModelConfig{ID: "m1", Path: p}); err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, err := s.Update("m1", func(c *types.ModelConfig) {
		c.Name = "renamed"
		c.ID = "evil" // must not take effect
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != "m1" || updated.Name != "renamed" {
		t.Fatalf("unexpected updated record: %+v", updated)
	}

	s2 := openStore(t, dir)
	got, ok := s2.Get("m1")
	if !ok || got.Name != "renamed" {
		t.Fatalf("expected update persisted, got %+v ok=%v", got, ok)
	}
}

func TestUpdateUnknownID(t *testing.T) {
	s := openStore(t, t.TempDir())
	_, err := s.Update("missing", func(*types.ModelConfig) {})
	if err == nil || !IsNotRegistered(err) {
		t.Fatalf("expected not-registered error, got %v", err)
	}
}

func TestListSorted(t *testing.T) {
	dir := t.TempDir()
	for _, id := range []string{"b", "a", "c"} {
		p := createModelFile(t, dir, id+".gguf", 1)
		s := openStore(t, dir)
		if err := s.Register(types.ModelConfig{ID: id, Path: p}); err != nil {
			t.Fatalf("register %s: %v", id, err)
		}
	}
	s := openStore(t, dir)
	out := s.List()
	if len(out) != 3 || out[0].ID != "a" || out[1].ID != "b" || out[2].ID != "c" {
		t.Fatalf("expected sorted ids, got %+v", out)
	}
}
