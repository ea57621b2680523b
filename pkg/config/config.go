package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const EnvPrefix = "OVERLOAD_"

type Config struct {
	BaseURL     string        `koanf:"base_url" yaml:"base_url"`
	Timeout     time.Duration `koanf:"timeout" yaml:"timeout"`
	Output      string        `koanf:"output" yaml:"output"`
	ExportDir   string        `koanf:"export_dir" yaml:"export_dir"`
	HealthCheck bool          `koanf:"health_check" yaml:"health_check"`
	UserAgent   string        `koanf:"user_agent" yaml:"user_agent"`
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:     "https://overload-api.onrender.com",
		Timeout:     0,
		Output:      "human",
		ExportDir:   ".",
		HealthCheck: true,
		UserAgent:   "overload-cli",
	}
}

// DefaultPath is ~/.overload/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".overload", "config.yaml")
	}
	return filepath.Join(home, ".overload", "config.yaml")
}

// Load reads the YAML file at path, when present, then overlays
// OVERLOAD_* environment variables. An empty path means DefaultPath.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// OVERLOAD_BASE_URL -> base_url
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

var validOutputs = map[string]bool{
	"human": true,
	"json":  true,
	"yaml":  true,
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid base_url %q: must be an absolute http(s) URL", c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	if !validOutputs[c.Output] {
		return fmt.Errorf("invalid output %q: must be one of human, json, yaml", c.Output)
	}
	return nil
}
