package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "empty", payload: ""},
		{name: "short text", payload: `{"msg":"hi"}`},
		{name: "unicode", payload: `{"name":"héllo wörld","emoji":"🎉"}`},
		{name: "large json", payload: `{"items":[` + strings.Repeat(`{"id":1,"label":"repeated"},`, 500) + `{"id":2}]}`},
		{name: "exactly at threshold", payload: strings.Repeat("x", 64)},
		{name: "just below threshold", payload: strings.Repeat("x", 63)},
	}

	c := New(true, 64)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored, compressed, err := c.Compress(tt.payload)
			require.NoError(t, err)

			got, err := c.Decompress(stored, compressed)
			require.NoError(t, err)
			assert.Equal(t, tt.payload, got)
		})
	}
}

func TestCodec_ThresholdSkipsSmallPayloads(t *testing.T) {
	c := New(true, 1024)

	stored, compressed, err := c.Compress("small")
	require.NoError(t, err)
	assert.False(t, compressed)
	assert.Equal(t, "small", stored)
}

func TestCodec_DisabledPassesThrough(t *testing.T) {
	c := New(false, 1)

	payload := strings.Repeat("a", 10000)
	stored, compressed, err := c.Compress(payload)
	require.NoError(t, err)
	assert.False(t, compressed)
	assert.Equal(t, payload, stored)
}

func TestCodec_CompressionShrinksTypicalJSON(t *testing.T) {
	c := New(true, 1024)

	payload := `{"rows":[` + strings.Repeat(`{"commit":"abc123","author":"dev","files":12},`, 100) + `{"commit":"end"}]}`
	require.Greater(t, len(payload), 1024)

	stored, compressed, err := c.Compress(payload)
	require.NoError(t, err)
	assert.True(t, compressed)
	assert.Less(t, len(stored), len(payload))
}

func TestCodec_DecompressCorruptData(t *testing.T) {
	c := New(true, 1)

	_, err := c.Decompress("not base64 at all!!!", true)
	assert.Error(t, err)

	// Valid base64 but not a gzip stream.
	_, err = c.Decompress("aGVsbG8gd29ybGQ=", true)
	assert.Error(t, err)
}
