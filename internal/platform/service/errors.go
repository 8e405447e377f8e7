package service

import (
	"errors"
	"time"

	"github.com/aussiebroadwan/lectern/pkg/jwtx"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrMFARequired        = errors.New("mfa code required")
	ErrWeakPassword       = errors.New("weak password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidRole        = errors.New("invalid role")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("forbidden")
)

// WeakPasswordError carries the first strength rule the password broke.
type WeakPasswordError struct {
	Message string
}

func (e *WeakPasswordError) Error() string { return "weak password: " + e.Message }
func (e *WeakPasswordError) Unwrap() error { return ErrWeakPassword }

// Sealer encrypts small secrets for storage at rest. *cryptox.SecretBox
// satisfies it.
type Sealer interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(serialized string) (string, error)
}

// TokenIssuer mints and checks the session token pair. *jwtx.Manager
// satisfies it.
type TokenIssuer interface {
	IssuePair(p jwtx.Payload) (jwtx.Pair, error)
	VerifyRefresh(token string) (*jwtx.Claims, bool)
}

func clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}
