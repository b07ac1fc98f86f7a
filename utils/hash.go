package utils

import (
	"encoding/hex"

	"github.com/minio/highwayhash"
)

// hashKey is a fixed 32-byte HighwayHash key. Hashes are used for identity and
// cache lookups only, so the key does not need to be secret.
var hashKey = []byte("pdf-rag-chatbot/highwayhash-key!")

// ContentHash returns a hex digest identifying an uploaded document.
func ContentHash(data []byte) string {
	sum := highwayhash.Sum128(data, hashKey)
	return hex.EncodeToString(sum[:])
}

// TextKey returns a 64-bit hash of s, used as an embedding cache key.
func TextKey(s string) uint64 {
	return highwayhash.Sum64([]byte(s), hashKey)
}

