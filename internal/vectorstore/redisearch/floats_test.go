package redisearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorCodecRoundTrip(t *testing.T) {
	in := []float32{0, 1, -1, 0.5, 3.14159, -2.5e-4}
	out := DecodeVector(EncodeVector(in))
	assert.Equal(t, in, out)
}

func TestEncodeVectorLayout(t *testing.T) {
	buf := EncodeVector([]float32{1})
	require.Len(t, buf, 4)
	// 1.0 as little-endian IEEE 754 float32 is 00 00 80 3F.
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f}, buf)
}

func TestEncodeVectorWidth(t *testing.T) {
	assert.Len(t, EncodeVector(make([]float32, 7)), 28)
	assert.Empty(t, EncodeVector(nil))
}
