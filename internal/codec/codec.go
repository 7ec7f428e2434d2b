// Package codec handles the at-rest representation of cache payloads.
// Payloads that cross a configurable size threshold are gzip-compressed
// and base64-encoded so they stay text-safe inside JSON entry files.
package codec

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Codec transforms payloads to and from their stored form. It is stateless
// and safe for concurrent use.
type Codec struct {
	enabled   bool
	threshold int
}

// New creates a codec. When enabled is false, or a payload is shorter than
// thresholdBytes, payloads pass through unchanged.
func New(enabled bool, thresholdBytes int) *Codec {
	return &Codec{
		enabled:   enabled,
		threshold: thresholdBytes,
	}
}

// Compress returns the storage representation of payload and whether
// compression was applied.
func (c *Codec) Compress(payload string) (string, bool, error) {
	if !c.enabled || len(payload) < c.threshold {
		return payload, false, nil
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(payload)); err != nil {
		return "", false, fmt.Errorf("failed to compress payload: %w", err)
	}
	if err := gz.Close(); err != nil {
		return "", false, fmt.Errorf("failed to finalize compressed payload: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), true, nil
}

// Decompress is the exact inverse of Compress. When compressed is false the
// stored form is the payload itself.
func (c *Codec) Decompress(stored string, compressed bool) (string, error) {
	if !compressed {
		return stored, nil
	}

	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", fmt.Errorf("failed to decode compressed payload: %w", err)
	}

	gz, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to open compressed payload: %w", err)
	}
	defer gz.Close()

	payload, err := io.ReadAll(gz)
	if err != nil {
		return "", fmt.Errorf("failed to decompress payload: %w", err)
	}

	return string(payload), nil
}
