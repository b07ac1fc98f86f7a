package utils

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
)

// CompressionAlgorithm defines supported compression methods
type CompressionAlgorithm string

const (
	CompressionNone   CompressionAlgorithm = "none"
	CompressionGzip   CompressionAlgorithm = "gzip"
	CompressionBrotli CompressionAlgorithm = "brotli"
)

// One leading byte identifies the algorithm of a packed payload.
var algorithmTags = map[CompressionAlgorithm]byte{
	CompressionNone:   0,
	CompressionGzip:   1,
	CompressionBrotli: 2,
}

// ParseCompression maps a config value to an algorithm. Empty means none.
func ParseCompression(s string) (CompressionAlgorithm, error) {
	switch CompressionAlgorithm(s) {
	case "", CompressionNone:
		return CompressionNone, nil
	case CompressionGzip, CompressionBrotli:
		return CompressionAlgorithm(s), nil
	}
	return "", fmt.Errorf("unsupported compression algorithm: %s", s)
}

// CompressData compresses data using the specified algorithm
func CompressData(data []byte, algorithm CompressionAlgorithm) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}

	var buf bytes.Buffer
	var w io.WriteCloser
	switch algorithm {
	case CompressionNone:
		return data, nil
	case CompressionGzip:
		w = gzip.NewWriter(&buf)
	case CompressionBrotli:
		w = brotli.NewWriterLevel(&buf, brotli.DefaultCompression)
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", algorithm)
	}

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write %s data: %w", algorithm, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close %s writer: %w", algorithm, err)
	}
	return buf.Bytes(), nil
}

// DecompressData reverses CompressData.
func DecompressData(compressed []byte, algorithm CompressionAlgorithm) ([]byte, error) {
	if len(compressed) == 0 {
		return compressed, nil
	}

	var r io.Reader
	switch algorithm {
	case CompressionNone:
		return compressed, nil
	case CompressionGzip:
		gz, err := gzip.NewReader(bytes.NewReader(compressed))
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	case CompressionBrotli:
		r = brotli.NewReader(bytes.NewReader(compressed))
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", algorithm)
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s data: %w", algorithm, err)
	}
	return out, nil
}

// Pack compresses data and prefixes the algorithm tag so Unpack needs no
// out-of-band metadata.
func Pack(data []byte, algorithm CompressionAlgorithm) ([]byte, error) {
	tag, ok := algorithmTags[algorithm]
	if !ok {
		return nil, fmt.Errorf("unsupported compression algorithm: %s", algorithm)
	}
	body, err := CompressData(data, algorithm)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(body)+1)
	out = append(out, tag)
	return append(out, body...), nil
}

// Unpack reads a payload written by Pack.
func Unpack(packed []byte) ([]byte, error) {
	if len(packed) == 0 {
		return nil, fmt.Errorf("empty packed payload")
	}
	for algorithm, tag := range algorithmTags {
		if tag == packed[0] {
			return DecompressData(packed[1:], algorithm)
		}
	}
	return nil, fmt.Errorf("unknown compression tag %d", packed[0])
}
