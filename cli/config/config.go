package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents a usbsas.yaml configuration file.
// All values are optional and act as defaults for CLI flags.
// CLI flags always override config values.
type Config struct {
	Worker      WorkerConfig  `yaml:"worker"`
	ReadTimeout Duration      `yaml:"read_timeout"`
	Adapter     AdapterConfig `yaml:"adapter"`
}

// WorkerConfig holds worker spawn defaults from the config file.
type WorkerConfig struct {
	// Path is the worker binary location.
	Path string `yaml:"path"`
	// ConfigPath is passed to the worker as `-c <path>`.
	ConfigPath string `yaml:"config_path"`
	// Env is extra environment entries for the worker, KEY=VALUE form.
	Env []string `yaml:"env,omitempty"`
}

// AdapterConfig holds report delivery defaults from the config file.
type AdapterConfig struct {
	Type    string            `yaml:"type"` // "webhook" or "redis"
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// Load parses the usbsas.yaml file at path. Environment references in the
// file (${VAR}, ${VAR:-default}) are expanded before unmarshaling, so
// secrets and host-specific paths can stay out of the file itself.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file %s not found", path)
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(ExpandEnv(string(raw))), &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
