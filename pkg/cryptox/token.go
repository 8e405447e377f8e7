package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// SecretSize is the number of random bytes behind a generated HMAC signing
// secret (256 bits, 43 chars base64url).
const SecretSize = 32

// GenerateToken returns size random bytes encoded as unpadded base64url.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("cryptox: token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: generate token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateSecret returns a fresh value for ACCESS_SECRET or REFRESH_SECRET.
func GenerateSecret() (string, error) {
	return GenerateToken(SecretSize)
}

// FingerprintToken returns a short, non-reversible SHA-256 fingerprint of a
// token. Logs refer to bearer tokens by fingerprint only, never by value.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:12])
}
