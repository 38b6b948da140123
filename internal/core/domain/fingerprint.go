package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// NormalizeContent trims surrounding whitespace so that byte-identical
// payloads with incidental padding share a fingerprint.
func NormalizeContent(content string) string {
	return strings.TrimSpace(content)
}

// Fingerprint computes the deterministic content hash used by the
// deduplication gate: SHA-256 over the UTF-8 bytes of the normalised
// text, hex encoded. Empty content hashes to a well-defined value and
// is deduplicable like any other content.
func Fingerprint(content string) string {
	sum := sha256.Sum256([]byte(NormalizeContent(content)))
	return hex.EncodeToString(sum[:])
}
