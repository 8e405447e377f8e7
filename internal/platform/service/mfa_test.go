package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/lectern/internal/platform/domain"
	"github.com/aussiebroadwan/lectern/internal/platform/service"
	"github.com/aussiebroadwan/lectern/pkg/cryptox"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

func TestMFA_EnrollStoresSealedSecret(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "ada@example.edu", domain.RoleTeacher)

	enrollment, err := f.mfa.Enroll(ctx, u)
	require.NoError(t, err)
	require.NotEmpty(t, enrollment.Secret)
	require.True(t, strings.HasPrefix(enrollment.URL, "otpauth://totp/"))
	require.Contains(t, enrollment.URL, "issuer=Lectern")

	stored := f.reload(t, u.ID)
	require.NotNil(t, stored.MFASecretEnc)
	require.False(t, stored.MFAEnabled(), "pending until confirmed")
	require.NotContains(t, *stored.MFASecretEnc, enrollment.Secret)

	opened, err := f.box.Decrypt(*stored.MFASecretEnc)
	require.NoError(t, err)
	require.Equal(t, enrollment.Secret, opened)
}

func TestMFA_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "ada@example.edu", domain.RoleTeacher)

	err := f.mfa.Confirm(ctx, u, "123456")
	require.ErrorIs(t, err, service.ErrMFANotEnrolled)

	enrollment, err := f.mfa.Enroll(ctx, u)
	require.NoError(t, err)
	pending := f.reload(t, u.ID)

	err = f.mfa.Confirm(ctx, pending, "000000")
	require.ErrorIs(t, err, service.ErrInvalidTOTPCode)

	code, err := totp.GenerateCode(enrollment.Secret, t0)
	require.NoError(t, err)
	require.NoError(t, f.mfa.Confirm(ctx, pending, code))

	active := f.reload(t, u.ID)
	require.True(t, active.MFAEnabled())
	require.WithinDuration(t, t0, *active.MFAEnabledAt, time.Microsecond)

	_, err = f.mfa.Enroll(ctx, active)
	require.ErrorIs(t, err, service.ErrMFAAlreadyEnabled)
	require.ErrorIs(t, f.mfa.Confirm(ctx, active, code), service.ErrMFAAlreadyEnabled)

	t.Run("validate tolerates one step of drift", func(t *testing.T) {
		prev, err := totp.GenerateCode(enrollment.Secret, t0.Add(-30*time.Second))
		require.NoError(t, err)
		ok, err := f.mfa.Validate(active, prev)
		require.NoError(t, err)
		require.True(t, ok)

		stale, err := totp.GenerateCode(enrollment.Secret, t0.Add(-5*time.Minute))
		require.NoError(t, err)
		ok, err = f.mfa.Validate(active, stale)
		require.NoError(t, err)
		require.False(t, ok)

		ok, err = f.mfa.Validate(active, "not-digits")
		require.NoError(t, err)
		require.False(t, ok)
	})

	require.ErrorIs(t, f.mfa.Disable(ctx, active, "000000"), service.ErrInvalidTOTPCode)
	require.NoError(t, f.mfa.Disable(ctx, active, code))

	cleared := f.reload(t, u.ID)
	require.False(t, cleared.MFAEnabled())
	require.Nil(t, cleared.MFASecretEnc)

	require.ErrorIs(t, f.mfa.Disable(ctx, cleared, code), service.ErrMFANotEnabled)
}

func TestMFA_StaleReads(t *testing.T) {
	tests := []struct {
		name string
		run  func(t *testing.T, f *fixture, u domain.User)
	}{
		{
			name: "confirm after re-enrollment",
			run: func(t *testing.T, f *fixture, u domain.User) {
				ctx := context.Background()
				first, err := f.mfa.Enroll(ctx, u)
				require.NoError(t, err)
				snapshot := f.reload(t, u.ID)

				_, err = f.mfa.Enroll(ctx, snapshot)
				require.NoError(t, err)

				code, err := totp.GenerateCode(first.Secret, t0)
				require.NoError(t, err)
				require.ErrorIs(t, f.mfa.Confirm(ctx, snapshot, code), service.ErrMFANotEnrolled)
				require.False(t, f.reload(t, u.ID).MFAEnabled())
			},
		},
		{
			name: "enroll after confirm",
			run: func(t *testing.T, f *fixture, u domain.User) {
				ctx := context.Background()
				enrollment, err := f.mfa.Enroll(ctx, u)
				require.NoError(t, err)
				snapshot := f.reload(t, u.ID)

				code, err := totp.GenerateCode(enrollment.Secret, t0)
				require.NoError(t, err)
				require.NoError(t, f.mfa.Confirm(ctx, snapshot, code))

				_, err = f.mfa.Enroll(ctx, snapshot)
				require.ErrorIs(t, err, service.ErrMFAAlreadyEnabled)

				active := f.reload(t, u.ID)
				require.True(t, active.MFAEnabled())
				require.Equal(t, *snapshot.MFASecretEnc, *active.MFASecretEnc)
			},
		},
		{
			name: "disable after disable",
			run: func(t *testing.T, f *fixture, u domain.User) {
				ctx := context.Background()
				enrollment, err := f.mfa.Enroll(ctx, u)
				require.NoError(t, err)
				code, err := totp.GenerateCode(enrollment.Secret, t0)
				require.NoError(t, err)
				require.NoError(t, f.mfa.Confirm(ctx, f.reload(t, u.ID), code))
				active := f.reload(t, u.ID)

				require.NoError(t, f.mfa.Disable(ctx, active, code))
				require.ErrorIs(t, f.mfa.Disable(ctx, active, code), service.ErrMFANotEnabled)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.run(t, f, f.register(t, "ada@example.edu", domain.RoleTeacher))
		})
	}
}

func TestMFA_UnreadableSecretIsServerFault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "ada@example.edu", domain.RoleTeacher)

	_, err := f.mfa.Enroll(ctx, u)
	require.NoError(t, err)

	otherKey, err := cryptox.GenerateKeyHex()
	require.NoError(t, err)
	rekeyed := &service.MFAService{Store: f.store, Box: cryptox.NewSecretBox(otherKey), Now: now}

	err = rekeyed.Confirm(ctx, f.reload(t, u.ID), "123456")
	require.ErrorIs(t, err, cryptox.ErrDecryptFailed)
	require.NotErrorIs(t, err, service.ErrInvalidTOTPCode)
}
