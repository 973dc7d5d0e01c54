package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest returns the lowercase hex SHA-256 digest of a plaintext password.
// The digest is deterministic and unsalted: the login path matches it by
// straight column equality, so two accounts with the same password share a
// stored digest. Callers hash before the plaintext ever reaches a service.
func Digest(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
