package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the bcrypt work factor used for every password hash. It is
// tuned so a single hash takes tens of milliseconds, which is the point.
const BcryptCost = 10

// MinPasswordLength is the shortest password CheckPasswordStrength accepts.
const MinPasswordLength = 8

// ErrPasswordTooLong is returned by HashPassword for input over bcrypt's
// 72 byte limit.
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// Strength rule messages, reported in the order the rules are checked.
const (
	MsgPasswordTooShort    = "password must be at least 8 characters long"
	MsgPasswordNoUppercase = "password must contain at least one uppercase letter"
	MsgPasswordNoLowercase = "password must contain at least one lowercase letter"
	MsgPasswordNoDigit     = "password must contain at least one number"
)

// HashPassword returns a salted bcrypt hash of password. Every call draws a
// fresh salt, so hashing the same password twice gives two different strings
// that both verify.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("cryptox: hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the bcrypt hash. Any
// failure, including a malformed hash, is reported as false.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// PasswordStrength is the outcome of CheckPasswordStrength. Message is empty
// when Valid is true.
type PasswordStrength struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// CheckPasswordStrength applies the character-class rules in a fixed order
// and stops at the first one that fails:
//
//  1. at least MinPasswordLength characters
//  2. an ASCII uppercase letter
//  3. an ASCII lowercase letter
//  4. an ASCII digit
//
// There is no symbol, dictionary or maximum length rule.
func CheckPasswordStrength(password string) PasswordStrength {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return PasswordStrength{Message: MsgPasswordTooShort}
	}

	var upper, lower, digit bool
	for i := range len(password) {
		switch c := password[i]; {
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= '0' && c <= '9':
			digit = true
		}
	}

	switch {
	case !upper:
		return PasswordStrength{Message: MsgPasswordNoUppercase}
	case !lower:
		return PasswordStrength{Message: MsgPasswordNoLowercase}
	case !digit:
		return PasswordStrength{Message: MsgPasswordNoDigit}
	}

	return PasswordStrength{Valid: true}
}

// GeneratePassword returns a random 16 character password that always passes
// CheckPasswordStrength. The first three characters are drawn from the
// uppercase, lowercase and digit sets and the result is shuffled.
func GeneratePassword() (string, error) {
	const (
		upper  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
		lower  = "abcdefghijklmnopqrstuvwxyz"
		digits = "0123456789"
		length = 16
	)
	sets := []string{upper, lower, digits}
	all := upper + lower + digits

	password := make([]byte, length)
	for i := range password {
		charset := all
		if i < len(sets) {
			charset = sets[i]
		}
		c, err := randomIndex(len(charset))
		if err != nil {
			return "", fmt.Errorf("cryptox: generate password: %w", err)
		}
		password[i] = charset[c]
	}

	// Fisher-Yates so the guaranteed classes are not always up front.
	for i := len(password) - 1; i > 0; i-- {
		j, err := randomIndex(i + 1)
		if err != nil {
			return "", fmt.Errorf("cryptox: generate password: %w", err)
		}
		password[i], password[j] = password[j], password[i]
	}

	return string(password), nil
}

func randomIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
