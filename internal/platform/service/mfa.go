package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/lectern/internal/platform/domain"
	"github.com/aussiebroadwan/lectern/internal/platform/store"
	"github.com/aussiebroadwan/lectern/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

var (
	ErrInvalidTOTPCode   = errors.New("invalid TOTP code")
	ErrMFANotEnabled     = errors.New("MFA not enabled for this user")
	ErrMFAAlreadyEnabled = errors.New("MFA already enabled for this user")
	ErrMFANotEnrolled    = errors.New("MFA not enrolled")
)

// totpOpts pins the parameters authenticator apps assume. One step of skew
// either side tolerates clock drift.
var totpOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// MFAService manages TOTP second factors. The shared secret is only ever
// stored sealed by Box.
type MFAService struct {
	Store  store.Store
	Box    Sealer
	Issuer string // shown in authenticator apps, e.g. "Lectern"
	Now    func() time.Time
}

type Enrollment struct {
	Secret string
	URL    string // otpauth:// URI for QR codes
}

// Enroll generates a fresh TOTP secret. MFA is not active until Confirm is
// called with a code from it; enrolling again replaces a pending secret.
func (s *MFAService) Enroll(ctx context.Context, u domain.User) (Enrollment, error) {
	if u.MFAEnabled() {
		return Enrollment{}, ErrMFAAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: u.Email,
		Period:      totpOpts.Period,
		Digits:      totpOpts.Digits,
		Algorithm:   totpOpts.Algorithm,
	})
	if err != nil {
		return Enrollment{}, fmt.Errorf("generate TOTP key: %w", err)
	}

	sealed, err := s.Box.Encrypt(key.Secret())
	if err != nil {
		return Enrollment{}, fmt.Errorf("seal TOTP secret: %w", err)
	}
	if err := s.Store.Users().SetPendingMFASecret(ctx, u.ID, sealed); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Enrollment{}, ErrMFAAlreadyEnabled
		}
		return Enrollment{}, fmt.Errorf("store TOTP secret: %w", err)
	}

	return Enrollment{Secret: key.Secret(), URL: key.URL()}, nil
}

// Confirm activates a pending enrollment once the user proves they hold the
// secret. Activation only succeeds if the stored secret is still the one the
// code was checked against.
func (s *MFAService) Confirm(ctx context.Context, u domain.User, code string) error {
	if u.MFAEnabled() {
		return ErrMFAAlreadyEnabled
	}
	if u.MFASecretEnc == nil {
		return ErrMFANotEnrolled
	}

	ok, err := s.check(*u.MFASecretEnc, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidTOTPCode
	}

	if err := s.Store.Users().EnableMFA(ctx, u.ID, *u.MFASecretEnc, clock(s.Now)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrMFANotEnrolled
		}
		return fmt.Errorf("enable MFA: %w", err)
	}
	slogx.FromContext(ctx).Info("mfa enabled", slog.String("user_id", u.ID))
	return nil
}

// Disable turns MFA off. A current code is required so a stolen access token
// alone cannot strip the second factor.
func (s *MFAService) Disable(ctx context.Context, u domain.User, code string) error {
	ok, err := s.Validate(u, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidTOTPCode
	}

	if err := s.Store.Users().DisableMFA(ctx, u.ID, *u.MFASecretEnc); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrMFANotEnabled
		}
		return fmt.Errorf("disable MFA: %w", err)
	}
	slogx.FromContext(ctx).Info("mfa disabled", slog.String("user_id", u.ID))
	return nil
}

// Validate checks code against the user's active secret.
func (s *MFAService) Validate(u domain.User, code string) (bool, error) {
	if !u.MFAEnabled() || u.MFASecretEnc == nil {
		return false, ErrMFANotEnabled
	}
	return s.check(*u.MFASecretEnc, code)
}

func (s *MFAService) check(sealed, code string) (bool, error) {
	secret, err := s.Box.Decrypt(sealed)
	if err != nil {
		return false, fmt.Errorf("open TOTP secret: %w", err)
	}

	ok, err := totp.ValidateCustom(strings.TrimSpace(code), secret, clock(s.Now), totpOpts)
	if err != nil {
		// Malformed codes are just wrong codes.
		return false, nil
	}
	return ok, nil
}
