package jwtx_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/lectern/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	accessSecret  = "test-access-secret-0123456789abcdef"
	refreshSecret = "test-refresh-secret-fedcba9876543210"
	issuer        = "lectern-test"
)

// clock is a settable time source for expiry tests.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newManager(t *testing.T) (*jwtx.Manager, *clock) {
	t.Helper()
	clk := &clock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	m := jwtx.NewManager(jwtx.Config{
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		Issuer:        issuer,
	}, jwtx.WithClock(clk.Now))
	return m, clk
}

var teacher = jwtx.Payload{
	Subject: "01HZX3TEACHER",
	Role:    "teacher",
	Email:   "ada@example.edu",
	Name:    "Ada Lovelace",
}

func TestManager_Defaults(t *testing.T) {
	m := jwtx.NewManager(jwtx.Config{})
	require.Equal(t, 15*time.Minute, m.AccessTTL())
	require.Equal(t, 7*24*time.Hour, m.RefreshTTL())
}

func TestManager_AccessRoundTrip(t *testing.T) {
	m, clk := newManager(t)

	token, err := m.IssueAccess(teacher)
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(token, "."))

	claims, ok := m.VerifyAccess(token)
	require.True(t, ok)
	require.Equal(t, teacher, claims.Payload())
	require.Equal(t, jwtx.UseAccess, claims.Use)
	require.Equal(t, issuer, claims.Issuer)
	require.NotEmpty(t, claims.ID)
	require.WithinDuration(t, clk.Now().Add(15*time.Minute), claims.ExpiresAt.Time, 0)
}

func TestManager_RefreshRoundTrip(t *testing.T) {
	m, clk := newManager(t)

	token, err := m.IssueRefresh(teacher)
	require.NoError(t, err)

	claims, ok := m.VerifyRefresh(token)
	require.True(t, ok)
	require.Equal(t, teacher, claims.Payload())
	require.Equal(t, jwtx.UseRefresh, claims.Use)
	require.WithinDuration(t, clk.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, 0)
}

func TestManager_AccessExpiry(t *testing.T) {
	m, clk := newManager(t)

	token, err := m.IssueAccess(teacher)
	require.NoError(t, err)

	clk.Advance(14 * time.Minute)
	_, ok := m.VerifyAccess(token)
	require.True(t, ok, "still valid before expiry")

	clk.Advance(time.Minute + time.Second)
	claims, ok := m.VerifyAccess(token)
	require.False(t, ok, "expired after 15 minutes")
	require.Nil(t, claims)
}

func TestManager_RefreshExpiry(t *testing.T) {
	m, clk := newManager(t)

	token, err := m.IssueRefresh(teacher)
	require.NoError(t, err)

	clk.Advance(6 * 24 * time.Hour)
	_, ok := m.VerifyRefresh(token)
	require.True(t, ok)

	clk.Advance(24*time.Hour + time.Second)
	_, ok = m.VerifyRefresh(token)
	require.False(t, ok)
}

func TestManager_CrossSecretRejection(t *testing.T) {
	m, _ := newManager(t)

	access, err := m.IssueAccess(teacher)
	require.NoError(t, err)
	refresh, err := m.IssueRefresh(teacher)
	require.NoError(t, err)

	claims, ok := m.VerifyRefresh(access)
	require.False(t, ok, "access token must not verify as refresh")
	require.Nil(t, claims)

	claims, ok = m.VerifyAccess(refresh)
	require.False(t, ok, "refresh token must not verify as access")
	require.Nil(t, claims)
}

func TestManager_SameSecretStillSeparatesKinds(t *testing.T) {
	m := jwtx.NewManager(jwtx.Config{AccessSecret: "shared", RefreshSecret: "shared"})

	access, err := m.IssueAccess(teacher)
	require.NoError(t, err)

	_, ok := m.VerifyRefresh(access)
	require.False(t, ok)
}

func TestManager_IssuePair(t *testing.T) {
	m, clk := newManager(t)

	pair, err := m.IssuePair(teacher)
	require.NoError(t, err)
	require.Equal(t, 15*time.Minute, pair.ExpiresIn)

	access, ok := m.VerifyAccess(pair.AccessToken)
	require.True(t, ok)
	refresh, ok := m.VerifyRefresh(pair.RefreshToken)
	require.True(t, ok)

	require.Equal(t, access.Payload(), refresh.Payload())
	require.WithinDuration(t, clk.Now(), access.IssuedAt.Time, 0)
	require.Equal(t, access.IssuedAt, refresh.IssuedAt, "both minted at the same instant")
	require.NotEqual(t, access.ID, refresh.ID)
}

func TestManager_VerifyFailures(t *testing.T) {
	m, clk := newManager(t)

	valid, err := m.IssueAccess(teacher)
	require.NoError(t, err)

	foreign := jwtx.NewManager(jwtx.Config{
		AccessSecret:  "some-other-secret",
		RefreshSecret: refreshSecret,
		Issuer:        issuer,
	}, jwtx.WithClock(clk.Now))
	foreignToken, err := foreign.IssueAccess(teacher)
	require.NoError(t, err)

	otherIssuer := jwtx.NewManager(jwtx.Config{
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		Issuer:        "someone-else",
	}, jwtx.WithClock(clk.Now))
	otherIssuerToken, err := otherIssuer.IssueAccess(teacher)
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tamperedSig := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "01HZX3TEACHER",
		"use": "access",
		"exp": clk.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "01HZX3TEACHER",
		"use": "access",
		"iss": issuer,
		"exp": clk.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(accessSecret))
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "01HZX3TEACHER",
		"use": "access",
		"iss": issuer,
	}).SignedString([]byte(accessSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"two segments", parts[0] + "." + parts[1]},
		{"tampered signature", tamperedSig},
		{"signed with another secret", foreignToken},
		{"wrong issuer", otherIssuerToken},
		{"alg none", noneToken},
		{"wrong hmac algorithm", hs512},
		{"missing exp", noExp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				claims, ok := m.VerifyAccess(tt.token)
				require.False(t, ok)
				require.Nil(t, claims)
			})
		})
	}
}

func TestManager_MissingSecrets(t *testing.T) {
	t.Run("issue access", func(t *testing.T) {
		m := jwtx.NewManager(jwtx.Config{RefreshSecret: refreshSecret})
		_, err := m.IssueAccess(teacher)
		require.ErrorIs(t, err, jwtx.ErrAccessSecretMissing)
		require.ErrorIs(t, err, jwtx.ErrNotConfigured)

		_, err = m.IssuePair(teacher)
		require.ErrorIs(t, err, jwtx.ErrAccessSecretMissing)

		// The refresh side is independent.
		_, err = m.IssueRefresh(teacher)
		require.NoError(t, err)
	})

	t.Run("issue refresh", func(t *testing.T) {
		m := jwtx.NewManager(jwtx.Config{AccessSecret: accessSecret})
		_, err := m.IssueRefresh(teacher)
		require.ErrorIs(t, err, jwtx.ErrRefreshSecretMissing)

		_, err = m.IssuePair(teacher)
		require.ErrorIs(t, err, jwtx.ErrRefreshSecretMissing)
	})

	t.Run("verify is fatal", func(t *testing.T) {
		m := jwtx.NewManager(jwtx.Config{})
		require.PanicsWithError(t, jwtx.ErrAccessSecretMissing.Error(), func() {
			m.VerifyAccess("anything")
		})
		require.PanicsWithError(t, jwtx.ErrRefreshSecretMissing.Error(), func() {
			m.VerifyRefresh("anything")
		})
	})

	t.Run("validate", func(t *testing.T) {
		err := jwtx.NewManager(jwtx.Config{}).Validate()
		require.ErrorIs(t, err, jwtx.ErrAccessSecretMissing)
		require.ErrorIs(t, err, jwtx.ErrRefreshSecretMissing)

		m, _ := newManager(t)
		require.NoError(t, m.Validate())
	})
}

func TestDecode(t *testing.T) {
	m, _ := newManager(t)

	refresh, err := m.IssueRefresh(teacher)
	require.NoError(t, err)

	claims, ok := jwtx.Decode(refresh)
	require.True(t, ok)
	require.Equal(t, jwtx.UseRefresh, claims.Use)
	require.Equal(t, teacher, claims.Payload())

	// Decode does not check signatures: a forged token decodes fine.
	parts := strings.Split(refresh, ".")
	forged := parts[0] + "." + parts[1] + ".Zm9yZ2Vk"
	claims, ok = jwtx.Decode(forged)
	require.True(t, ok)
	require.Equal(t, teacher.Subject, claims.Subject)

	_, ok = m.VerifyRefresh(forged)
	require.False(t, ok)

	_, ok = jwtx.Decode("not-a-jwt")
	require.False(t, ok)
}

func TestNewJTI(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		jti, err := jwtx.NewJTI()
		require.NoError(t, err)
		require.Len(t, jti, 27, "20 random bytes, unpadded base64url")
		require.NotContains(t, jti, "=")
		require.NotContains(t, jti, "+")
		require.NotContains(t, jti, "/")
		require.False(t, seen[jti], "jti repeated")
		seen[jti] = true
	}
}

func TestManager_ConcurrentUse(t *testing.T) {
	m, _ := newManager(t)

	var wg sync.WaitGroup
	failures := make(chan string, 64)
	for range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pair, err := m.IssuePair(teacher)
			if err != nil {
				failures <- err.Error()
				return
			}
			if _, ok := m.VerifyAccess(pair.AccessToken); !ok {
				failures <- "access did not verify"
			}
			if _, ok := m.VerifyRefresh(pair.RefreshToken); !ok {
				failures <- "refresh did not verify"
			}
		}()
	}
	wg.Wait()
	close(failures)

	for f := range failures {
		t.Error(f)
	}
}
