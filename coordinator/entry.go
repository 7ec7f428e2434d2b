package coordinator

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Entry is one stored record. Value holds the serialized payload in its
// at-rest form: plain JSON text, or base64-encoded gzip when Compressed is
// set.
type Entry struct {
	Key        string     `json:"key"`
	Namespace  string     `json:"namespace"`
	Value      string     `json:"value"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Size       int        `json:"size"`
	Compressed bool       `json:"compressed"`
}

// expired reports whether the entry's TTL has lapsed at the given instant.
// Entries without an expiry never expire by time.
func (e *Entry) expired(now time.Time) bool {
	return e.ExpiresAt != nil && !now.Before(*e.ExpiresAt)
}

// entryFileName derives the on-disk file name for a key. Non-alphanumeric
// characters other than '_' and '-' are replaced with '_'; because that
// transform is lossy, an 8-hex-char digest of the original key is appended
// so distinct keys never collide on disk. The original key lives inside the
// JSON payload.
func entryFileName(key string) string {
	safe := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		b := key[i]
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9', b == '_', b == '-':
			safe = append(safe, b)
		default:
			safe = append(safe, '_')
		}
	}

	sum := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%s-%x.json", safe, sum[:4])
}
