// Package coordinator implements a namespaced, disk-persistent memory cache
// for small JSON-serializable records. Entries live in an in-memory index
// mirrored write-through to one JSON file each, expire lazily on read, and
// are evicted oldest-first when a namespace cap is exceeded.
package coordinator

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"

	"github.com/memcoord/memcoord/internal/codec"
)

// Coordinator is the entry store. A single instance has exclusive ownership
// of its base path; all operations are safe for concurrent use within one
// process.
type Coordinator struct {
	cfg      Config
	fs       afero.Fs
	logger   *slog.Logger
	codec    *codec.Codec
	registry map[string]Namespace

	mu      sync.RWMutex
	entries map[string]map[string]*Entry
	derived Stats

	hits   atomic.Uint64
	misses atomic.Uint64

	syncErrors   atomic.Uint64
	lastSyncNano atomic.Int64

	syncMu      sync.Mutex
	syncRunning bool
	syncCancel  func()
	syncWg      sync.WaitGroup
}

// New builds a coordinator from cfg, creates any missing namespace
// directories and loads surviving entries from disk. Expired files are
// deleted during the load pass; unreadable files are skipped.
func New(cfg Config) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid coordinator config: %w", err)
	}

	fs := cfg.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Coordinator{
		cfg:      cfg,
		fs:       fs,
		logger:   logger,
		codec:    codec.New(cfg.Compression.Enabled, cfg.Compression.Threshold),
		registry: make(map[string]Namespace, len(cfg.Namespaces)),
		entries:  make(map[string]map[string]*Entry, len(cfg.Namespaces)),
	}
	for _, ns := range cfg.Namespaces {
		c.registry[ns.Name] = ns
		c.entries[ns.Name] = make(map[string]*Entry)
	}

	if err := c.loadAll(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.recomputeStatsLocked()
	c.mu.Unlock()

	return c, nil
}

// Close stops the background sync loop, if running.
func (c *Coordinator) Close() error {
	c.StopAutoSync()
	return nil
}

type namespaceLoad struct {
	name    string
	entries map[string]*Entry
}

// loadAll runs one loader per namespace directory concurrently and merges
// the results into the index.
func (c *Coordinator) loadAll() error {
	p := pool.NewWithResults[namespaceLoad]().WithErrors()
	for _, ns := range c.cfg.Namespaces {
		p.Go(func() (namespaceLoad, error) {
			return c.loadNamespace(ns)
		})
	}

	loads, err := p.Wait()
	if err != nil {
		return fmt.Errorf("failed to load cache state: %w", err)
	}

	total := 0
	for _, load := range loads {
		c.entries[load.name] = load.entries
		total += len(load.entries)
	}

	c.logger.Info("Cache state loaded",
		"base_path", c.cfg.BasePath,
		"namespaces", len(c.cfg.Namespaces),
		"entries", total)
	return nil
}

func (c *Coordinator) loadNamespace(ns Namespace) (namespaceLoad, error) {
	dir := c.namespaceDir(ns.Name)
	if err := c.fs.MkdirAll(dir, 0o755); err != nil {
		return namespaceLoad{}, fmt.Errorf("failed to create namespace directory %s: %w", dir, err)
	}

	infos, err := afero.ReadDir(c.fs, dir)
	if err != nil {
		return namespaceLoad{}, fmt.Errorf("failed to read namespace directory %s: %w", dir, err)
	}

	now := time.Now().UTC()
	loaded := make(map[string]*Entry)
	for _, info := range infos {
		if info.IsDir() || filepath.Ext(info.Name()) != ".json" {
			continue
		}
		path := filepath.Join(dir, info.Name())

		raw, err := afero.ReadFile(c.fs, path)
		if err != nil {
			c.logger.Warn("Skipping unreadable entry file", "path", path, "error", err)
			continue
		}

		var entry Entry
		if err := json.Unmarshal(raw, &entry); err != nil || entry.Key == "" {
			// Corruption is not fatal at load time.
			c.logger.Warn("Skipping corrupt entry file", "path", path)
			continue
		}

		if entry.expired(now) {
			if err := c.fs.Remove(path); err != nil && !os.IsNotExist(err) {
				c.logger.Warn("Failed to delete expired entry file", "path", path, "error", err)
			}
			continue
		}

		loaded[entry.Key] = &entry
	}

	return namespaceLoad{name: ns.Name, entries: loaded}, nil
}

type storeOptions struct {
	ttl *time.Duration
}

// StoreOption customizes a single Store call.
type StoreOption func(*storeOptions)

// WithTTL overrides the namespace default lifetime for this entry. Zero
// disables expiry.
func WithTTL(d time.Duration) StoreOption {
	return func(o *storeOptions) {
		o.ttl = &d
	}
}

// Store serializes value and writes it under (namespace, key), replacing
// any existing entry. The namespace must be part of the configured set.
// Storing into a capped namespace evicts the oldest entries once the cap is
// exceeded.
func (c *Coordinator) Store(namespace, key string, value any, opts ...StoreOption) error {
	ns, ok := c.registry[namespace]
	if !ok {
		return &UnknownNamespaceError{Namespace: namespace}
	}
	if key == "" {
		// The load pass treats a missing key as corruption, so an empty key
		// would be written but never survive a restart.
		return fmt.Errorf("key cannot be empty")
	}

	var o storeOptions
	for _, opt := range opts {
		opt(&o)
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize value for %s:%s: %w", namespace, key, err)
	}

	stored, compressed, err := c.codec.Compress(string(payload))
	if err != nil {
		return fmt.Errorf("failed to encode value for %s:%s: %w", namespace, key, err)
	}

	now := time.Now().UTC()
	ttl := ns.TTL
	if o.ttl != nil {
		ttl = *o.ttl
	}
	var expiresAt *time.Time
	if ttl > 0 {
		t := now.Add(ttl)
		expiresAt = &t
	}

	entry := &Entry{
		Key:        key,
		Namespace:  namespace,
		Value:      stored,
		CreatedAt:  now,
		UpdatedAt:  now,
		ExpiresAt:  expiresAt,
		Size:       len(stored),
		Compressed: compressed,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.writeEntryLocked(entry); err != nil {
		return err
	}
	c.entries[namespace][key] = entry

	if ns.MaxEntries > 0 {
		if err := c.enforceCapLocked(ns); err != nil {
			// The write itself landed; keep the statistics consistent with
			// the index even though eviction failed.
			c.recomputeStatsLocked()
			return err
		}
	}

	c.recomputeStatsLocked()
	return nil
}

// Retrieve decodes the live entry under (namespace, key) into out, which
// must be a pointer. An expired entry is deleted as a side effect and
// reported as ErrNotFound. A payload that fails to decode yields a
// CorruptEntryError.
func (c *Coordinator) Retrieve(namespace, key string, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[namespace][key]
	if !ok {
		c.misses.Add(1)
		return ErrNotFound
	}

	if entry.expired(time.Now().UTC()) {
		if err := c.removeLocked(namespace, key); err != nil {
			c.logger.Warn("Failed to delete expired entry", "namespace", namespace, "key", key, "error", err)
		}
		c.recomputeStatsLocked()
		c.misses.Add(1)
		return ErrNotFound
	}

	payload, err := c.codec.Decompress(entry.Value, entry.Compressed)
	if err != nil {
		return &CorruptEntryError{Namespace: namespace, Key: key, cause: err}
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return &CorruptEntryError{Namespace: namespace, Key: key, cause: err}
	}

	c.hits.Add(1)
	return nil
}

// Retrieve is a typed convenience wrapper around Coordinator.Retrieve.
func Retrieve[T any](c *Coordinator, namespace, key string) (T, error) {
	var value T
	err := c.Retrieve(namespace, key, &value)
	return value, err
}

// Delete removes the entry under (namespace, key) from memory and disk. It
// reports whether anything was removed and tolerates an already-missing
// file.
func (c *Coordinator) Delete(namespace, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[namespace][key]; !ok {
		return false, nil
	}
	if err := c.removeLocked(namespace, key); err != nil {
		return false, err
	}

	c.recomputeStatsLocked()
	return true, nil
}

// List returns the sorted keys of every entry in the namespace that is live
// at call time. It never mutates the store; expired entries are merely
// omitted.
func (c *Coordinator) List(namespace string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now().UTC()
	keys := make([]string, 0, len(c.entries[namespace]))
	for key, entry := range c.entries[namespace] {
		if entry.expired(now) {
			continue
		}
		keys = append(keys, key)
	}

	sort.Strings(keys)
	return keys
}

// Search returns copies of every live entry in the namespace whose key
// matches the regular expression. Like List, it is a read-only scan.
func (c *Coordinator) Search(namespace, pattern string) ([]Entry, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid search pattern %q: %w", pattern, err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now().UTC()
	var matches []Entry
	for key, entry := range c.entries[namespace] {
		if entry.expired(now) || !re.MatchString(key) {
			continue
		}
		matches = append(matches, *entry)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Key < matches[j].Key
	})
	return matches, nil
}

// ClearNamespace removes every entry in the namespace, expired ones
// included, and returns the count removed.
func (c *Coordinator) ClearNamespace(namespace string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bucket := c.entries[namespace]
	keys := make([]string, 0, len(bucket))
	for key := range bucket {
		keys = append(keys, key)
	}

	removed := 0
	for _, key := range keys {
		if err := c.removeLocked(namespace, key); err != nil {
			c.recomputeStatsLocked()
			return removed, err
		}
		removed++
	}

	c.recomputeStatsLocked()
	return removed, nil
}

// Cleanup sweeps every namespace and deletes all entries whose TTL has
// lapsed. It returns the count removed and is intended to be driven by an
// external scheduler.
func (c *Coordinator) Cleanup() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UTC()
	removed := 0
	for namespace, bucket := range c.entries {
		var expired []string
		for key, entry := range bucket {
			if entry.expired(now) {
				expired = append(expired, key)
			}
		}
		for _, key := range expired {
			if err := c.removeLocked(namespace, key); err != nil {
				c.recomputeStatsLocked()
				return removed, err
			}
			removed++
		}
	}

	c.recomputeStatsLocked()
	if removed > 0 {
		c.logger.Debug("Expired entries swept", "removed", removed)
	}
	return removed, nil
}

// ExportAll returns the decoded value of every live entry, keyed by
// "namespace:key". It backs the backup operation.
func (c *Coordinator) ExportAll() (map[string]json.RawMessage, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now().UTC()
	out := make(map[string]json.RawMessage)
	for namespace, bucket := range c.entries {
		for key, entry := range bucket {
			if entry.expired(now) {
				continue
			}
			payload, err := c.codec.Decompress(entry.Value, entry.Compressed)
			if err != nil {
				return nil, &CorruptEntryError{Namespace: namespace, Key: key, cause: err}
			}
			out[namespace+":"+key] = json.RawMessage(payload)
		}
	}

	return out, nil
}

// ImportAll stores every entry whose namespace is part of the configured
// set and returns the count imported. Entries for unknown namespaces are
// skipped, not errored, so backups taken with a different namespace set can
// be replayed.
func (c *Coordinator) ImportAll(data map[string]json.RawMessage) (int, error) {
	imported := 0
	for composite, value := range data {
		idx := strings.Index(composite, ":")
		if idx <= 0 || idx == len(composite)-1 {
			c.logger.Warn("Skipping malformed import key", "key", composite)
			continue
		}
		namespace, key := composite[:idx], composite[idx+1:]

		if _, ok := c.registry[namespace]; !ok {
			c.logger.Debug("Skipping import for unknown namespace", "namespace", namespace, "key", key)
			continue
		}

		if err := c.Store(namespace, key, value); err != nil {
			return imported, fmt.Errorf("failed to import %s: %w", composite, err)
		}
		imported++
	}

	return imported, nil
}

// Stats returns a snapshot of the aggregate statistics.
func (c *Coordinator) Stats() Stats {
	c.mu.RLock()
	snap := Stats{
		TotalEntries:   c.derived.TotalEntries,
		TotalSizeBytes: c.derived.TotalSizeBytes,
		Namespaces:     make(map[string]NamespaceStats, len(c.derived.Namespaces)),
	}
	for name, ns := range c.derived.Namespaces {
		snap.Namespaces[name] = ns
	}
	c.mu.RUnlock()

	snap.Hits = c.hits.Load()
	snap.Misses = c.misses.Load()
	snap.SyncErrors = c.syncErrors.Load()
	if nano := c.lastSyncNano.Load(); nano != 0 {
		t := time.Unix(0, nano).UTC()
		snap.LastSyncAt = &t
	}

	return snap
}

// enforceCapLocked evicts the oldest entries by creation time until the
// namespace fits its cap. Ties on CreatedAt break by key so eviction stays
// deterministic.
func (c *Coordinator) enforceCapLocked(ns Namespace) error {
	bucket := c.entries[ns.Name]
	if len(bucket) <= ns.MaxEntries {
		return nil
	}

	ordered := make([]*Entry, 0, len(bucket))
	for _, entry := range bucket {
		ordered = append(ordered, entry)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].Key < ordered[j].Key
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	excess := len(bucket) - ns.MaxEntries
	for _, entry := range ordered[:excess] {
		if err := c.removeLocked(ns.Name, entry.Key); err != nil {
			return err
		}
		c.logger.Debug("Evicted entry over namespace cap",
			"namespace", ns.Name,
			"key", entry.Key,
			"max_entries", ns.MaxEntries)
	}

	return nil
}

// removeLocked deletes an entry's file and drops it from the index,
// tolerating a file that is already gone. The file goes first so a failed
// removal leaves both sides of the mirror intact.
func (c *Coordinator) removeLocked(namespace, key string) error {
	path := c.entryPath(namespace, key)
	if err := c.fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete entry file %s: %w", path, err)
	}

	delete(c.entries[namespace], key)
	return nil
}

// recomputeStatsLocked rebuilds the derived counters from the index. Full
// recomputation keeps the statistics exactly consistent with the index
// after every mutation.
func (c *Coordinator) recomputeStatsLocked() {
	derived := Stats{Namespaces: make(map[string]NamespaceStats, len(c.registry))}
	for namespace, bucket := range c.entries {
		ns := NamespaceStats{Entries: len(bucket)}
		for _, entry := range bucket {
			ns.SizeBytes += int64(entry.Size)
		}
		derived.Namespaces[namespace] = ns
		derived.TotalEntries += ns.Entries
		derived.TotalSizeBytes += ns.SizeBytes
	}
	c.derived = derived
}

func (c *Coordinator) writeEntryLocked(entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode entry %s:%s: %w", entry.Namespace, entry.Key, err)
	}

	path := c.entryPath(entry.Namespace, entry.Key)
	if err := afero.WriteFile(c.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write entry file %s: %w", path, err)
	}
	return nil
}

func (c *Coordinator) namespaceDir(namespace string) string {
	return filepath.Join(c.cfg.BasePath, storageDirName, namespace)
}

func (c *Coordinator) entryPath(namespace, key string) string {
	return filepath.Join(c.namespaceDir(namespace), entryFileName(key))
}
