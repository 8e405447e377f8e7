package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token lifetimes. Access tokens are short lived and sent on every
// request; refresh tokens only ever go to the refresh endpoint.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Use is the "use" claim, naming which flavour of token this is. Only the
// signing secret decides whether a token is trusted; Use lets callers that
// Decode a token pick the right verifier.
type Use string

const (
	UseAccess  Use = "access"
	UseRefresh Use = "refresh"
)

// Payload is what the caller wants baked into a token at an authentication
// event. Subject and Role are expected on every token.
type Payload struct {
	Subject string
	Role    string
	Email   string
	Name    string
}

// Claims are the signed contents of an access or refresh token.
type Claims struct {
	jwt.RegisteredClaims

	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Use   Use    `json:"use,omitempty"`
}

// Payload returns the caller supplied part of the claims.
func (c *Claims) Payload() Payload {
	return Payload{
		Subject: c.Subject,
		Role:    c.Role,
		Email:   c.Email,
		Name:    c.Name,
	}
}

func newClaims(p Payload, use Use, issuer string, ttl time.Duration, now time.Time) (Claims, error) {
	jti, err := NewJTI()
	if err != nil {
		return Claims{}, err
	}
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   p.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
		Role:  p.Role,
		Email: p.Email,
		Name:  p.Name,
		Use:   use,
	}, nil
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() (string, error) {
	var b [20]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("jwtx: generate jti: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}
