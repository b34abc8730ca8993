package storage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorSerialization(t *testing.T) {
	t.Run("round trip keeps special values", func(t *testing.T) {
		original := []float32{0.1, -0.25, 0, float32(math.Inf(1)), math.SmallestNonzeroFloat32}
		decoded, err := UnmarshalVector(MarshalVector(original))
		require.NoError(t, err)
		assert.Equal(t, original, decoded)
	})

	t.Run("layout is length then little-endian float32", func(t *testing.T) {
		assert.Equal(t, []byte{0x01, 0x00, 0x00, 0x80, 0x3f}, MarshalVector([]float32{1}))
		assert.Len(t, MarshalVector(make([]float32, 3)), 13)
	})

	t.Run("empty vector", func(t *testing.T) {
		decoded, err := UnmarshalVector(MarshalVector(nil))
		require.NoError(t, err)
		assert.Empty(t, decoded)
	})

	t.Run("truncated data", func(t *testing.T) {
		encoded := MarshalVector([]float32{1, 2})
		_, err := UnmarshalVector(encoded[:5])
		assert.ErrorIs(t, err, ErrTruncatedData)
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := UnmarshalVector(nil)
		assert.ErrorIs(t, err, ErrTruncatedData)
	})

	t.Run("oversized length prefix", func(t *testing.T) {
		_, err := UnmarshalVector([]byte{0xff, 0xff, 0xff, 0x7f, 0x00})
		assert.ErrorIs(t, err, ErrTruncatedData)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		encoded := append(MarshalVector([]float32{1}), 0x00)
		_, err := UnmarshalVector(encoded)
		assert.ErrorIs(t, err, ErrSerializationFailed)
		assert.NotErrorIs(t, err, ErrTruncatedData)
	})
}
