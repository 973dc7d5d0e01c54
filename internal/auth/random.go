package auth

import (
	"crypto/rand"
	"encoding/base64"
)

// RandomToken returns a 32-byte url-safe random token without padding,
// used for single-use verification links.
func RandomToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
