// Package checksum hashes file contents to detect no-op rewrites.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Equal reports whether a and b hash to the same digest.
func Equal(a, b []byte) bool {
	return sha256.Sum256(a) == sha256.Sum256(b)
}
