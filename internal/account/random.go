package account

import (
	"crypto/rand"
	"encoding/hex"
)

// newOpaqueToken returns n cryptographically random bytes, hex-encoded.
func newOpaqueToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
