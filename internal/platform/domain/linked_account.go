package domain

import (
	"regexp"
	"time"
)

// LinkedAccount is a third-party OAuth grant (video conferencing, calendar)
// held on behalf of a user. Both tokens are stored only as SecretBox blobs.
type LinkedAccount struct {
	ID              string
	UserID          string
	Provider        string
	AccessTokenEnc  string
	RefreshTokenEnc *string
	ExpiresAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

var providerPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,31}$`)

// ValidProvider reports whether name is usable as a provider key.
func ValidProvider(name string) bool {
	return providerPattern.MatchString(name)
}
