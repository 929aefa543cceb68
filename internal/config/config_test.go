package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Sampler.N != DefaultConfig().Sampler.N {
		t.Errorf("Sampler.N = %d, want default", cfg.Sampler.N)
	}
}

func TestLoadFile_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[sampler]
n = 500
f_true = 0.4

[decks]
dir = "/decks"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Sampler.N != 500 || cfg.Sampler.FTrue != 0.4 {
		t.Errorf("Sampler = %+v", cfg.Sampler)
	}
	if cfg.Sampler.FHalf != 0.25 {
		t.Errorf("FHalf = %v, want default 0.25", cfg.Sampler.FHalf)
	}
	if cfg.Decks.Dir != "/decks" || !cfg.Decks.IgnoreLands {
		t.Errorf("Decks = %+v", cfg.Decks)
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[sampler\nn ="), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestSaveFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Storage.Path = "/tmp/x.db"
	cfg.Tags.TaxonomyFile = "tags.yaml"
	cfg.API.CORSOrigins = []string{"https://example.com"}
	cfg.Sampler.Seed = 42

	if err := cfg.SaveFile(path); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if got.Storage.Path != "/tmp/x.db" || got.Tags.TaxonomyFile != "tags.yaml" || got.Sampler.Seed != 42 {
		t.Errorf("round trip lost values: %+v", got)
	}
	if len(got.API.CORSOrigins) != 1 || got.API.CORSOrigins[0] != "https://example.com" {
		t.Errorf("CORSOrigins = %v", got.API.CORSOrigins)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad rate limit", func(c *Config) { c.Universe.RateLimit = "fast" }},
		{"bad debounce", func(c *Config) { c.Decks.Debounce = "" }},
		{"negative complement limit", func(c *Config) { c.Decks.ComplementLimit = -1 }},
		{"zero stall rounds", func(c *Config) { c.Decks.MaxStallRounds = 0 }},
		{"negative n", func(c *Config) { c.Sampler.N = -1 }},
		{"fractions over one", func(c *Config) { c.Sampler.FTrue, c.Sampler.FHalf = 0.7, 0.4 }},
		{"negative fraction", func(c *Config) { c.Sampler.FHalf = -0.1 }},
		{"bad timeout", func(c *Config) { c.API.RequestTimeout = "1 minute" }},
		{"zero max rows", func(c *Config) { c.API.MaxSampleRows = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestDurations(t *testing.T) {
	cfg := DefaultConfig()

	if d, err := cfg.GetRateLimit(); err != nil || d != 100*time.Millisecond {
		t.Errorf("GetRateLimit() = %v, %v", d, err)
	}
	if d, err := cfg.GetDebounce(); err != nil || d != 500*time.Millisecond {
		t.Errorf("GetDebounce() = %v, %v", d, err)
	}
	if d, err := cfg.GetRequestTimeout(); err != nil || d != time.Minute {
		t.Errorf("GetRequestTimeout() = %v, %v", d, err)
	}
}

func TestStoragePaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Path = filepath.Join("data", "db.sqlite")

	path, err := cfg.StoragePath()
	if err != nil || path != cfg.Storage.Path {
		t.Errorf("StoragePath() = %q, %v", path, err)
	}

	dir, err := cfg.BackupDir()
	if err != nil || dir != filepath.Join("data", "backups") {
		t.Errorf("BackupDir() = %q, %v", dir, err)
	}
}
