package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL != "https://overload-api.onrender.com" {
		t.Errorf("unexpected base url %q", cfg.BaseURL)
	}
	if cfg.Timeout != 0 {
		t.Errorf("default timeout must be zero, got %v", cfg.Timeout)
	}
	if !cfg.HealthCheck || cfg.Output != "human" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "base_url: http://localhost:8000\ntimeout: 45s\noutput: json\nhealth_check: false\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("OVERLOAD_OUTPUT", "yaml")
	t.Setenv("OVERLOAD_EXPORT_DIR", "/tmp/reports")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL != "http://localhost:8000" {
		t.Errorf("unexpected base url %q", cfg.BaseURL)
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("unexpected timeout %v", cfg.Timeout)
	}
	if cfg.HealthCheck {
		t.Errorf("health_check must be disabled by the file")
	}
	if cfg.Output != "yaml" {
		t.Errorf("env must override file output, got %q", cfg.Output)
	}
	if cfg.ExportDir != "/tmp/reports" {
		t.Errorf("unexpected export dir %q", cfg.ExportDir)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("base_url: [unterminated"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"relative url", func(c *Config) { c.BaseURL = "overload-api" }, true},
		{"ftp url", func(c *Config) { c.BaseURL = "ftp://example.com" }, true},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, true},
		{"bad output", func(c *Config) { c.Output = "table" }, true},
		{"json output", func(c *Config) { c.Output = "json" }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
