package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/lectern/internal/platform/domain"
	"github.com/aussiebroadwan/lectern/internal/platform/service"
	"github.com/aussiebroadwan/lectern/internal/platform/store/drivers/sqlite"
	"github.com/aussiebroadwan/lectern/pkg/cryptox"
	"github.com/aussiebroadwan/lectern/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store        *sqlite.Store
	box          *cryptox.SecretBox
	tokens       *jwtx.Manager
	auth         *service.AuthService
	mfa          *service.MFAService
	integrations *service.IntegrationService
	documents    *service.DocumentService
	storage      *fakeStorage
}

func now() time.Time { return t0 }

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "lectern.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	box := cryptox.NewSecretBox(testKey)
	tokens := jwtx.NewManager(jwtx.Config{
		AccessSecret:  "service-test-access",
		RefreshSecret: "service-test-refresh",
		Issuer:        "lectern-test",
	}, jwtx.WithClock(now))

	mfa := &service.MFAService{Store: st, Box: box, Issuer: "Lectern", Now: now}
	storage := &fakeStorage{}

	return &fixture{
		store:        st,
		box:          box,
		tokens:       tokens,
		mfa:          mfa,
		auth:         &service.AuthService{Store: st, Tokens: tokens, MFA: mfa, Now: now},
		integrations: &service.IntegrationService{Store: st, Box: box, Now: now},
		documents:    &service.DocumentService{Store: st, Storage: storage, URLTTL: 10 * time.Minute, Now: now},
		storage:      storage,
	}
}

func (f *fixture) register(t *testing.T, email string, role domain.Role) domain.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(), service.RegisterInput{
		Email:    email,
		Name:     "Test User",
		Password: "Correct1horse",
		Role:     role.String(),
	})
	require.NoError(t, err)
	return u
}

// reload fetches the current stored state of a user.
func (f *fixture) reload(t *testing.T, id string) domain.User {
	t.Helper()
	u, err := f.auth.Profile(context.Background(), id)
	require.NoError(t, err)
	return u
}
