// Package config provides configuration loading and management for
// ubispec.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete ubispec configuration.
type Config struct {
	Specs      SpecsConfig      `yaml:"specs"`
	Validation ValidationConfig `yaml:"validation"`
	Watch      WatchConfig      `yaml:"watch"`
	Artifacts  ArtifactsConfig  `yaml:"artifacts"`
	NATS       NATSConfig       `yaml:"nats"`
}

// SpecsConfig configures document discovery.
type SpecsConfig struct {
	// Root is the directory searched for documents (default: cwd).
	Root string `yaml:"root"`
	// Patterns are doublestar globs relative to the root.
	Patterns []string `yaml:"patterns"`
	// ExcludeDirs lists directory names skipped during discovery.
	ExcludeDirs []string `yaml:"exclude_dirs"`
}

// ValidationConfig configures cross-document validation.
type ValidationConfig struct {
	// AllowExternalDeciders downgrades references to deciders without a
	// lifecycle document from errors to advisories (default: true).
	AllowExternalDeciders *bool `yaml:"allow_external_deciders"`
}

// ExternalDecidersAllowed resolves the tri-state flag.
func (v ValidationConfig) ExternalDecidersAllowed() bool {
	if v.AllowExternalDeciders == nil {
		return true
	}
	return *v.AllowExternalDeciders
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	// Debounce is how long to wait for more changes before revalidating.
	Debounce time.Duration `yaml:"debounce"`
	// MetricsAddr exposes Prometheus metrics when non-empty
	// (e.g. ":9090").
	MetricsAddr string `yaml:"metrics_addr"`
}

// ArtifactsConfig configures derived-artifact output.
type ArtifactsConfig struct {
	// Dir is where artifact files are written.
	Dir string `yaml:"dir"`
	// Format is the default serialization: markdown, json, yaml, dot.
	Format string `yaml:"format"`
}

// NATSConfig configures artifact publishing.
type NATSConfig struct {
	// URL is the NATS server URL (empty = publishing disabled).
	URL string `yaml:"url"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Specs: SpecsConfig{
			Patterns:    []string{"**/*.ubi.yaml", "**/*.ubi.yml"},
			ExcludeDirs: []string{".git", "node_modules", "vendor"},
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Artifacts: ArtifactsConfig{
			Dir:    "ubispec-out",
			Format: "markdown",
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if len(c.Specs.Patterns) == 0 {
		return fmt.Errorf("specs.patterns must not be empty")
	}
	switch c.Artifacts.Format {
	case "markdown", "json", "yaml", "dot":
	default:
		return fmt.Errorf("artifacts.format %q is not one of markdown, json, yaml, dot", c.Artifacts.Format)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file on top of the
// defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return config, nil
}

// SaveToFile writes the configuration as YAML, creating parent
// directories as needed.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Merge merges another config into this one (other takes precedence
// for set values).
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Specs.Root != "" {
		c.Specs.Root = other.Specs.Root
	}
	if len(other.Specs.Patterns) > 0 {
		c.Specs.Patterns = other.Specs.Patterns
	}
	if len(other.Specs.ExcludeDirs) > 0 {
		c.Specs.ExcludeDirs = other.Specs.ExcludeDirs
	}

	if other.Validation.AllowExternalDeciders != nil {
		c.Validation.AllowExternalDeciders = other.Validation.AllowExternalDeciders
	}

	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}
	if other.Watch.MetricsAddr != "" {
		c.Watch.MetricsAddr = other.Watch.MetricsAddr
	}

	if other.Artifacts.Dir != "" {
		c.Artifacts.Dir = other.Artifacts.Dir
	}
	if other.Artifacts.Format != "" {
		c.Artifacts.Format = other.Artifacts.Format
	}

	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
}
