package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/afero"
)

const (
	// DefaultCompressionThreshold is the payload size, in bytes, above which
	// values are compressed before hitting disk.
	DefaultCompressionThreshold = 1024

	// DefaultSyncInterval is the default delay between autosync ticks.
	DefaultSyncInterval = 5 * time.Minute

	// storageDirName is the directory under BasePath that owns all entry files.
	storageDirName = "coordinator"
)

// Namespace describes one partition of the cache. Namespaces are fixed at
// construction time and never created or destroyed at runtime.
type Namespace struct {
	// Name uniquely identifies the namespace.
	Name string `yaml:"name" mapstructure:"name"`

	// KeyPrefix is a logical label for external systems. Local storage does
	// not depend on it.
	KeyPrefix string `yaml:"key_prefix" mapstructure:"key_prefix"`

	// TTL is the default lifetime of entries in this namespace. Zero means
	// entries never expire by time.
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`

	// MaxEntries caps the namespace. When exceeded, the oldest entries by
	// creation time are evicted. Zero means uncapped.
	MaxEntries int `yaml:"max_entries" mapstructure:"max_entries"`

	// Compression marks the namespace as a compression candidate. The actual
	// decision is made per entry against the global size threshold.
	Compression bool `yaml:"compression" mapstructure:"compression"`
}

// AutoSyncConfig controls the background synchronization loop.
type AutoSyncConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// CompressionConfig controls the payload codec.
type CompressionConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Threshold is the minimum payload size, in bytes, for compression to
	// apply.
	Threshold int `yaml:"threshold" mapstructure:"threshold"`
}

// SyncHook is invoked on every autosync tick to push state to an external
// system. Hook failures are counted and logged but never stop the loop.
type SyncHook func(ctx context.Context) error

// Config holds everything a Coordinator needs. Construct it once per
// instance; the namespace set is immutable afterwards.
type Config struct {
	// BasePath is the directory that owns the on-disk entry tree. A single
	// coordinator instance must have exclusive ownership of it.
	BasePath string

	// Namespaces lists every partition the coordinator serves.
	Namespaces []Namespace

	AutoSync    AutoSyncConfig
	Compression CompressionConfig

	// SyncHook is the external synchronization callback. Nil means ticks
	// only record a timestamp.
	SyncHook SyncHook

	// FS abstracts disk access. Defaults to the OS filesystem.
	FS afero.Fs

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// DefaultNamespaces returns the namespace set used by the reporting
// pipeline when none is configured explicitly.
func DefaultNamespaces() []Namespace {
	return []Namespace{
		{Name: "session", KeyPrefix: "sess", TTL: 24 * time.Hour},
		{Name: "analysis", KeyPrefix: "anl", TTL: 7 * 24 * time.Hour, Compression: true},
		{Name: "patterns", KeyPrefix: "pat", MaxEntries: 500},
		{Name: "reports", KeyPrefix: "rpt", TTL: 30 * 24 * time.Hour, Compression: true},
	}
}

// DefaultConfig returns a configuration with sensible defaults rooted at
// basePath.
func DefaultConfig(basePath string) Config {
	return Config{
		BasePath:   basePath,
		Namespaces: DefaultNamespaces(),
		AutoSync: AutoSyncConfig{
			Enabled:  false,
			Interval: DefaultSyncInterval,
		},
		Compression: CompressionConfig{
			Enabled:   true,
			Threshold: DefaultCompressionThreshold,
		},
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.BasePath == "" {
		return fmt.Errorf("base path is required")
	}
	if len(c.Namespaces) == 0 {
		return fmt.Errorf("at least one namespace is required")
	}

	seen := make(map[string]struct{}, len(c.Namespaces))
	for _, ns := range c.Namespaces {
		if ns.Name == "" {
			return fmt.Errorf("namespace name cannot be empty")
		}
		if _, dup := seen[ns.Name]; dup {
			return fmt.Errorf("duplicate namespace %q", ns.Name)
		}
		seen[ns.Name] = struct{}{}

		if ns.TTL < 0 {
			return fmt.Errorf("namespace %q: ttl cannot be negative", ns.Name)
		}
		if ns.MaxEntries < 0 {
			return fmt.Errorf("namespace %q: max_entries cannot be negative", ns.Name)
		}
	}

	if c.Compression.Enabled && c.Compression.Threshold <= 0 {
		return fmt.Errorf("compression threshold must be positive when compression is enabled")
	}
	if c.AutoSync.Enabled && c.AutoSync.Interval <= 0 {
		return fmt.Errorf("auto sync interval must be positive when auto sync is enabled")
	}

	return nil
}
