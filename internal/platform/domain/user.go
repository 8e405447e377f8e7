package domain

import "time"

type User struct {
	ID           string
	Email        string
	Name         string
	Role         Role
	PasswordHash string // bcrypt

	// MFASecretEnc is the TOTP secret sealed with the platform SecretBox. It
	// is set at enrollment and only becomes active once MFAEnabledAt is set.
	MFASecretEnc *string
	MFAEnabledAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u User) MFAEnabled() bool { return u.MFAEnabledAt != nil }
