package main

import (
	"os"
	"path/filepath"
	"testing"

	"inferd/internal/config"
)

func TestResolve_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "addr: \":7000\"\nmodels_dir: /srv/models\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	a := &app{configPath: path}
	a.flags.Addr = ":9999"
	if err := a.resolve(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if a.cfg.Addr != ":9999" {
		t.Fatalf("flag should win: addr=%s", a.cfg.Addr)
	}
	if a.cfg.ModelsDir != "/srv/models" {
		t.Fatalf("file value lost: models_dir=%s", a.cfg.ModelsDir)
	}
	if a.cfg.LogLevel != "debug" {
		t.Fatalf("log_level=%s", a.cfg.LogLevel)
	}
	if a.cfg.MaxLoadedModels != config.DefaultMaxLoadedModels {
		t.Fatalf("defaults not applied: max_loaded_models=%d", a.cfg.MaxLoadedModels)
	}
}

func TestResolve_NoFileUsesDefaults(t *testing.T) {
	a := &app{}
	if err := a.resolve(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if a.cfg.Addr != config.DefaultAddr {
		t.Fatalf("addr=%s", a.cfg.Addr)
	}
}

func TestResolve_MissingFileErrors(t *testing.T) {
	a := &app{configPath: "/does/not/exist.yaml"}
	if err := a.resolve(); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestStatusBaseURL(t *testing.T) {
	cases := map[string]string{
		":8090":             "http://127.0.0.1:8090",
		"10.0.0.2:8090":     "http://10.0.0.2:8090",
		"https://box.local": "https://box.local",
	}
	for in, want := range cases {
		if got := statusBaseURL(in); got != want {
			t.Fatalf("statusBaseURL(%q) = %q, want %q", in, got, want)
		}
	}
}
