package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "empty catalog",
			mutate: func(cfg *Config) {
				cfg.CatalogSource = ""
			},
			wantErr: "catalog source",
		},
		{
			name: "catalog url without host",
			mutate: func(cfg *Config) {
				cfg.CatalogSource = "http://"
			},
			wantErr: "catalog URL",
		},
		{
			name: "zero workers",
			mutate: func(cfg *Config) {
				cfg.Workers = 0
			},
			wantErr: "workers",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "backoff above max",
			mutate: func(cfg *Config) {
				cfg.RetryBackoff = 5 * time.Second
				cfg.RetryBackoffMax = time.Second
			},
			wantErr: "retry backoff",
		},
		{
			name: "unknown format",
			mutate: func(cfg *Config) {
				cfg.OutputFormat = "xml"
			},
			wantErr: "output format",
		},
		{
			name: "rate limit without burst",
			mutate: func(cfg *Config) {
				cfg.RateLimit = 5
				cfg.RateBurst = 0
			},
			wantErr: "rate burst",
		},
		{
			name: "zero compare limit",
			mutate: func(cfg *Config) {
				cfg.CompareLimit = 0
			},
			wantErr: "compare limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
	if cfg.IsRemote() {
		t.Fatalf("default catalog should be a local file")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kitfinder.yaml")
	body := "catalog: https://example.test/kits.json\ntimeout: 3s\nworkers: 8\nformat: dual\nrate_limit: 0\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := DefaultConfig()
	if err := cfg.LoadFile(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.CatalogSource != "https://example.test/kits.json" || !cfg.IsRemote() {
		t.Fatalf("catalog = %q", cfg.CatalogSource)
	}
	if cfg.Timeout != 3*time.Second || cfg.Workers != 8 || cfg.OutputFormat != "dual" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.MaxRetries != 2 {
		t.Fatalf("absent keys should keep defaults, max retries = %d", cfg.MaxRetries)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("loaded config should validate: %v", err)
	}
}

func TestLoadFileErrors(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("workers: [1, 2"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := cfg.LoadFile(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("KITFINDER_CATALOG", " ./data/kits.json ")
	t.Setenv("KITFINDER_WORKERS", "12")
	t.Setenv("KITFINDER_TIMEOUT", "750ms")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.CatalogSource != "./data/kits.json" || cfg.Workers != 12 || cfg.Timeout != 750*time.Millisecond {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	t.Setenv("KITFINDER_WORKERS", "many")
	if err := DefaultConfig().ApplyEnv(); err == nil || !strings.Contains(err.Error(), "KITFINDER_WORKERS") {
		t.Fatalf("expected KITFINDER_WORKERS error, got %v", err)
	}
}
