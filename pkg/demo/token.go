package demo

import (
	"crypto/rand"
	"encoding/base64"
)

// newSessionToken returns an opaque, URL-safe random token with 256 bits of
// entropy. The token is the only credential a demo session has.
func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
