// Package config loads and validates the memcoord application
// configuration from YAML and maps it onto the coordinator's runtime
// config.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/memcoord/memcoord/coordinator"
	"github.com/memcoord/memcoord/internal/pathutil"
	"github.com/memcoord/memcoord/internal/slogutil"
)

// Config is the complete application configuration.
type Config struct {
	BasePath    string            `yaml:"base_path" mapstructure:"base_path"`
	Namespaces  []NamespaceConfig `yaml:"namespaces" mapstructure:"namespaces"`
	AutoSync    AutoSyncConfig    `yaml:"auto_sync" mapstructure:"auto_sync"`
	Compression CompressionConfig `yaml:"compression" mapstructure:"compression"`
	Maintenance MaintenanceConfig `yaml:"maintenance" mapstructure:"maintenance"`
	Log         slogutil.Config   `yaml:"log" mapstructure:"log"`
}

// NamespaceConfig declares one cache partition.
type NamespaceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	KeyPrefix   string        `yaml:"key_prefix" mapstructure:"key_prefix"`
	TTL         time.Duration `yaml:"ttl" mapstructure:"ttl"`
	MaxEntries  int           `yaml:"max_entries" mapstructure:"max_entries"`
	Compression bool          `yaml:"compression" mapstructure:"compression"`
}

// MarshalYAML renders durations as strings ("24h") rather than raw
// nanosecond integers, so generated config files stay human-editable.
// Loading accepts either form through viper's duration hook.
func (n NamespaceConfig) MarshalYAML() (any, error) {
	out := struct {
		Name        string `yaml:"name"`
		KeyPrefix   string `yaml:"key_prefix,omitempty"`
		TTL         string `yaml:"ttl,omitempty"`
		MaxEntries  int    `yaml:"max_entries,omitempty"`
		Compression bool   `yaml:"compression,omitempty"`
	}{
		Name:        n.Name,
		KeyPrefix:   n.KeyPrefix,
		MaxEntries:  n.MaxEntries,
		Compression: n.Compression,
	}
	if n.TTL > 0 {
		out.TTL = n.TTL.String()
	}
	return out, nil
}

// AutoSyncConfig controls the background sync loop.
type AutoSyncConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// MarshalYAML renders the interval as a duration string.
func (a AutoSyncConfig) MarshalYAML() (any, error) {
	out := struct {
		Enabled  bool   `yaml:"enabled"`
		Interval string `yaml:"interval,omitempty"`
	}{Enabled: a.Enabled}
	if a.Interval > 0 {
		out.Interval = a.Interval.String()
	}
	return out, nil
}

// CompressionConfig controls the payload codec.
type CompressionConfig struct {
	Enabled   bool `yaml:"enabled" mapstructure:"enabled"`
	Threshold int  `yaml:"threshold" mapstructure:"threshold"`
}

// MaintenanceConfig controls the scheduled cleanup sweep.
type MaintenanceConfig struct {
	// CleanupSchedule is a cron spec; empty disables the sweep.
	CleanupSchedule string `yaml:"cleanup_schedule" mapstructure:"cleanup_schedule"`
}

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() *Config {
	namespaces := make([]NamespaceConfig, 0)
	for _, ns := range coordinator.DefaultNamespaces() {
		namespaces = append(namespaces, NamespaceConfig{
			Name:        ns.Name,
			KeyPrefix:   ns.KeyPrefix,
			TTL:         ns.TTL,
			MaxEntries:  ns.MaxEntries,
			Compression: ns.Compression,
		})
	}

	return &Config{
		BasePath:   "./data",
		Namespaces: namespaces,
		AutoSync: AutoSyncConfig{
			Enabled:  false,
			Interval: coordinator.DefaultSyncInterval,
		},
		Compression: CompressionConfig{
			Enabled:   true,
			Threshold: coordinator.DefaultCompressionThreshold,
		},
		Maintenance: MaintenanceConfig{
			CleanupSchedule: "@every 10m",
		},
		Log: slogutil.Config{
			Level:      "info",
			MaxSize:    100,
			MaxAge:     30,
			MaxBackups: 5,
		},
	}
}

// LoadConfig reads configFile on top of the defaults. A missing file is not
// an error; the defaults apply.
func LoadConfig(configFile string) (*Config, error) {
	config := DefaultConfig()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			v := viper.New()
			v.SetConfigFile(configFile)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
			}
			if err := v.Unmarshal(config); err != nil {
				return nil, fmt.Errorf("error unmarshaling config: %w", err)
			}
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate checks the application-level constraints, including that the
// base path is usable.
func (c *Config) Validate() error {
	if err := pathutil.CheckDirectoryWritable(c.BasePath); err != nil {
		return fmt.Errorf("base path check failed: %w", err)
	}

	// Coordinator-level constraints (namespace uniqueness, thresholds) are
	// validated by the coordinator itself.
	runtime := c.ToCoordinator()
	return runtime.Validate()
}

// ToCoordinator maps the file configuration onto the coordinator's runtime
// config.
func (c *Config) ToCoordinator() coordinator.Config {
	namespaces := make([]coordinator.Namespace, 0, len(c.Namespaces))
	for _, ns := range c.Namespaces {
		namespaces = append(namespaces, coordinator.Namespace{
			Name:        ns.Name,
			KeyPrefix:   ns.KeyPrefix,
			TTL:         ns.TTL,
			MaxEntries:  ns.MaxEntries,
			Compression: ns.Compression,
		})
	}

	return coordinator.Config{
		BasePath:   c.BasePath,
		Namespaces: namespaces,
		AutoSync: coordinator.AutoSyncConfig{
			Enabled:  c.AutoSync.Enabled,
			Interval: c.AutoSync.Interval,
		},
		Compression: coordinator.CompressionConfig{
			Enabled:   c.Compression.Enabled,
			Threshold: c.Compression.Threshold,
		},
	}
}

// WriteDefault writes the default configuration to path as YAML, for
// first-run setup.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}
