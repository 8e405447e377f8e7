package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/lectern/internal/platform/domain"
	"github.com/aussiebroadwan/lectern/internal/platform/store"
	"github.com/aussiebroadwan/lectern/pkg/cryptox"
	"github.com/aussiebroadwan/lectern/pkg/idx"
	"github.com/aussiebroadwan/lectern/pkg/jwtx"
	"github.com/aussiebroadwan/lectern/pkg/slogx"
)

const (
	maxNameLength  = 100
	maxEmailLength = 254
)

// dummyHash is compared against when the email is unknown so that a miss
// costs the same bcrypt work as a wrong password.
var dummyHash = sync.OnceValue(func() string {
	h, _ := cryptox.HashPassword("lectern-timing-equaliser")
	return h
})

type AuthService struct {
	Store  store.Store
	Tokens TokenIssuer
	MFA    *MFAService
	Now    func() time.Time
}

type RegisterInput struct {
	Email    string
	Name     string
	Password string
	Role     string
}

// Session is the result of a successful authentication event.
type Session struct {
	User   domain.User
	Tokens jwtx.Pair
}

// Register creates a teacher or student account. Admin accounts come from
// CreateAdmin only.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	role := domain.RoleStudent
	if in.Role != "" {
		r, err := domain.ParseRole(strings.ToLower(strings.TrimSpace(in.Role)))
		if err != nil || !r.SelfAssignable() {
			return domain.User{}, ErrInvalidRole
		}
		role = r
	}

	u, err := s.createUser(ctx, in.Email, in.Name, in.Password, role)
	if err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user registered",
		slog.String("user_id", u.ID),
		slog.String("role", u.Role.String()),
	)
	return u, nil
}

// CreateAdmin is the operator path for provisioning an admin account.
func (s *AuthService) CreateAdmin(ctx context.Context, email, name, password string) (domain.User, error) {
	return s.createUser(ctx, email, name, password, domain.RoleAdmin)
}

func (s *AuthService) createUser(ctx context.Context, email, name, password string, role domain.Role) (domain.User, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return domain.User{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return domain.User{}, fmt.Errorf("%w: name must be 1-%d characters", ErrInvalidInput, maxNameLength)
	}

	hash, err := hashStrongPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	now := clock(s.Now)
	u := domain.User{
		ID:           idx.NewAt(now).String(),
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login checks the password and, for users with MFA enabled, the TOTP code.
// Every credential failure is reported as ErrInvalidCredentials; a missing
// code on an MFA account is ErrMFARequired so clients can prompt for one.
func (s *AuthService) Login(ctx context.Context, email, password, otp string) (Session, error) {
	l := slogx.FromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return Session{}, fmt.Errorf("get user: %w", err)
		}
		cryptox.VerifyPassword(password, dummyHash())
		l.Info("login failed", slog.String("reason", "unknown_email"))
		return Session{}, ErrInvalidCredentials
	}

	if !cryptox.VerifyPassword(password, u.PasswordHash) {
		l.Info("login failed", slog.String("reason", "bad_password"), slog.String("user_id", u.ID))
		return Session{}, ErrInvalidCredentials
	}

	if u.MFAEnabled() {
		otp = strings.TrimSpace(otp)
		if otp == "" {
			return Session{}, ErrMFARequired
		}
		ok, err := s.MFA.Validate(u, otp)
		if err != nil {
			return Session{}, err
		}
		if !ok {
			l.Info("login failed", slog.String("reason", "bad_otp"), slog.String("user_id", u.ID))
			return Session{}, ErrInvalidCredentials
		}
	}

	return s.issue(u)
}

// Refresh trades a refresh token for a new pair. The user is reloaded so the
// new tokens carry the current role and profile.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	claims, ok := s.Tokens.VerifyRefresh(refreshToken)
	if !ok {
		slogx.FromContext(ctx).Info("refresh rejected",
			slog.String("token_fp", cryptox.FingerprintToken(refreshToken)),
		)
		return Session{}, ErrInvalidToken
	}

	u, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrInvalidToken
		}
		return Session{}, fmt.Errorf("get user: %w", err)
	}

	return s.issue(u)
}

// ChangePassword requires the current password even though the caller is
// already authenticated.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if !cryptox.VerifyPassword(current, u.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := hashStrongPassword(next)
	if err != nil {
		return err
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	slogx.FromContext(ctx).Info("password changed", slog.String("user_id", u.ID))
	return nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *AuthService) issue(u domain.User) (Session, error) {
	pair, err := s.Tokens.IssuePair(PayloadFor(u))
	if err != nil {
		return Session{}, fmt.Errorf("issue tokens: %w", err)
	}
	return Session{User: u, Tokens: pair}, nil
}

// PayloadFor is the token payload minted for u.
func PayloadFor(u domain.User) jwtx.Payload {
	return jwtx.Payload{
		Subject: u.ID,
		Role:    u.Role.String(),
		Email:   u.Email,
		Name:    u.Name,
	}
}

// NormalizeEmail trims and lowercases email and checks it is a bare address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(email) > maxEmailLength {
		return "", fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: email is not a valid address", ErrInvalidInput)
	}
	return email, nil
}

func hashStrongPassword(password string) (string, error) {
	if st := cryptox.CheckPasswordStrength(password); !st.Valid {
		return "", &WeakPasswordError{Message: st.Message}
	}
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		if errors.Is(err, cryptox.ErrPasswordTooLong) {
			return "", &WeakPasswordError{Message: "password must be at most 72 bytes long"}
		}
		return "", err
	}
	return hash, nil
}
