package coordinator

import "time"

// Stats is a point-in-time snapshot of coordinator aggregates. Entry counts
// and sizes are recomputed in full after every mutation so they can never
// drift from the index.
type Stats struct {
	TotalEntries   int                       `json:"total_entries"`
	TotalSizeBytes int64                     `json:"total_size_bytes"`
	Namespaces     map[string]NamespaceStats `json:"namespaces"`
	Hits           uint64                    `json:"hits"`
	Misses         uint64                    `json:"misses"`
	LastSyncAt     *time.Time                `json:"last_sync_at,omitempty"`
	SyncErrors     uint64                    `json:"sync_errors"`
}

// NamespaceStats is the per-namespace breakdown.
type NamespaceStats struct {
	Entries   int   `json:"entries"`
	SizeBytes int64 `json:"size_bytes"`
}
