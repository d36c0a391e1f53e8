// Package dedup fingerprints article content and detects exact duplicates.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf8"

	"github.com/jonesrussell/faqhub/internal/normalize"
)

// DefaultMinContentLength is the shortest normalized content that gets a fingerprint.
const DefaultMinContentLength = 100

// Hasher computes content fingerprints.
type Hasher struct {
	enabled   bool
	minLength int
}

// NewHasher creates a Hasher. When enabled is false every fingerprint is empty.
func NewHasher(enabled bool, minLength int) *Hasher {
	if minLength <= 0 {
		minLength = DefaultMinContentLength
	}
	return &Hasher{enabled: enabled, minLength: minLength}
}

// Hash returns the hex SHA-256 of the normalized content, or "" when
// deduplication is disabled or the normalized content is shorter than the
// minimum length. Short content is not fingerprinted to avoid collisions on boilerplate.
func (h *Hasher) Hash(content string) string {
	if !h.enabled {
		return ""
	}

	normalized := normalize.Normalize(content)
	if utf8.RuneCountInString(normalized) < h.minLength {
		return ""
	}

	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
