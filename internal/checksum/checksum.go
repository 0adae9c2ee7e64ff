// Package checksum computes content digests used to detect unchanged files.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
// An empty string is never a valid digest, so callers can use it as "unknown".
func Sum(data []byte) string {
	h := sha256.New()
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Same reports whether data hashes to the previously recorded digest.
func Same(prev string, data []byte) bool {
	return prev != "" && prev == Sum(data)
}
