package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Default()
	if cfg != want {
		t.Fatalf("expected defaults %+v, got %+v", want, cfg)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funxyc.yaml")
	if err := os.WriteFile(path, []byte("fuel: 500\ncacheEnabled: false\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Fuel != 500 {
		t.Fatalf("expected fuel=500, got %d", cfg.Fuel)
	}
	if cfg.CacheEnabled {
		t.Fatalf("expected cacheEnabled=false")
	}
	if cfg.CachePath != Default().CachePath {
		t.Fatalf("expected unset CachePath to keep its default, got %q", cfg.CachePath)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funxyc.yaml")
	if err := os.WriteFile(path, []byte("fuel: [this is not an int\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error for malformed YAML")
	}
}
