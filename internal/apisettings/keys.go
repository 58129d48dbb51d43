// Package apisettings manages organization ingest API keys: generation,
// listing and revocation. Key material never persists in plaintext.
package apisettings

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// KeyPrefixLen is how many characters of the plaintext are stored for
// display, so owners can tell keys apart in lists.
const KeyPrefixLen = 12

// GenerateKey returns fresh plaintext key material, its stored hash and
// its display prefix.
func GenerateKey() (plaintext, hash, prefix string) {
	raw := uuid.NewString() + uuid.NewString()
	plaintext = "eqt_" + strings.ReplaceAll(raw, "-", "")
	return plaintext, HashKey(plaintext), plaintext[:KeyPrefixLen]
}

// HashKey returns the hex SHA-256 of the plaintext. Lookup at ingest time
// hashes the presented key and matches against the stored hash.
func HashKey(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
