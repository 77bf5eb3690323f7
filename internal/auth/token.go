package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// newResetToken returns a 64-char hex token with 256 bits of entropy.
// Reset tokens gate a full credential replacement, so they come from
// crypto/rand, not a seeded PRNG.
func newResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
