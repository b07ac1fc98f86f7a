package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackUnpack(t *testing.T) {
	data := []byte(strings.Repeat(`{"chunk":"the quick brown fox","vector":[0.1,0.2,0.3]}`, 200))

	for _, algo := range []CompressionAlgorithm{CompressionNone, CompressionGzip, CompressionBrotli} {
		t.Run(string(algo), func(t *testing.T) {
			packed, err := Pack(data, algo)
			require.NoError(t, err)
			if algo != CompressionNone {
				assert.Less(t, len(packed), len(data))
			}

			got, err := Unpack(packed)
			require.NoError(t, err)
			assert.Equal(t, data, got)
		})
	}
}

func TestUnpack_Invalid(t *testing.T) {
	_, err := Unpack(nil)
	assert.Error(t, err)

	_, err = Unpack([]byte{9, 1, 2})
	assert.Error(t, err)

	_, err = Unpack([]byte{1, 'n', 'o', 't', 'g', 'z'})
	assert.Error(t, err)
}

func TestParseCompression(t *testing.T) {
	algo, err := ParseCompression("")
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, algo)

	algo, err = ParseCompression("brotli")
	require.NoError(t, err)
	assert.Equal(t, CompressionBrotli, algo)

	_, err = ParseCompression("zstd")
	assert.Error(t, err)
}
