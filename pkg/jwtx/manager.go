package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNotConfigured is wrapped by every configuration error. A missing
	// secret is an operator problem, not a verification outcome.
	ErrNotConfigured = errors.New("jwtx: not configured")

	ErrAccessSecretMissing  = fmt.Errorf("%w: access token secret is empty", ErrNotConfigured)
	ErrRefreshSecretMissing = fmt.Errorf("%w: refresh token secret is empty", ErrNotConfigured)
)

// Config carries the two independent signing secrets and token lifetimes.
// Zero TTLs fall back to the package defaults.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Pair is an access and refresh token minted from the same payload at the
// same instant.
type Pair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration // access token lifetime
}

// Manager issues and verifies HS256 tokens. Access tokens are signed with
// the access secret and refresh tokens with the refresh secret, so a token of
// one kind never verifies as the other. There is no revocation: a leaked
// token stays valid until it expires.
//
// A Manager is immutable and safe for concurrent use.
type Manager struct {
	cfg Config
	now func() time.Time
}

// Option customises a Manager.
type Option func(*Manager)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager builds a Manager. Secrets are not checked here: the first call
// that needs a missing secret reports it.
func NewManager(cfg Config, opts ...Option) *Manager {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTokenTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTokenTTL
	}

	m := &Manager{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AccessTTL is the lifetime given to access tokens.
func (m *Manager) AccessTTL() time.Duration { return m.cfg.AccessTTL }

// RefreshTTL is the lifetime given to refresh tokens.
func (m *Manager) RefreshTTL() time.Duration { return m.cfg.RefreshTTL }

// Validate reports whether both secrets are present.
func (m *Manager) Validate() error {
	return errors.Join(m.check(UseAccess), m.check(UseRefresh))
}

// IssueAccess signs p into an access token.
func (m *Manager) IssueAccess(p Payload) (string, error) {
	return m.issue(p, UseAccess, m.now())
}

// IssueRefresh signs p into a refresh token.
func (m *Manager) IssueRefresh(p Payload) (string, error) {
	return m.issue(p, UseRefresh, m.now())
}

// IssuePair signs p into both tokens using one timestamp.
func (m *Manager) IssuePair(p Payload) (Pair, error) {
	now := m.now()

	access, err := m.issue(p, UseAccess, now)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := m.issue(p, UseRefresh, now)
	if err != nil {
		return Pair{}, err
	}

	return Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    m.cfg.AccessTTL,
	}, nil
}

// VerifyAccess checks signature, algorithm, expiry and issuer against the
// access secret. Every failure gives (nil, false); callers treat that as
// unauthenticated and must not try to tell failure causes apart.
//
// VerifyAccess panics with ErrAccessSecretMissing if no access secret is
// configured.
func (m *Manager) VerifyAccess(token string) (*Claims, bool) {
	return m.verify(token, UseAccess)
}

// VerifyRefresh is VerifyAccess for refresh tokens and the refresh secret.
func (m *Manager) VerifyRefresh(token string) (*Claims, bool) {
	return m.verify(token, UseRefresh)
}

// Decode parses a token WITHOUT checking its signature or expiry.
//
// The result is attacker controlled. Use it only to inspect a claim outside a
// trust boundary, for example reading "use" to decide which Verify method to
// call. Never make an authentication or authorization decision from it.
func Decode(token string) (*Claims, bool) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

func (m *Manager) secret(use Use) string {
	if use == UseRefresh {
		return m.cfg.RefreshSecret
	}
	return m.cfg.AccessSecret
}

func (m *Manager) ttl(use Use) time.Duration {
	if use == UseRefresh {
		return m.cfg.RefreshTTL
	}
	return m.cfg.AccessTTL
}

func (m *Manager) check(use Use) error {
	if m.secret(use) != "" {
		return nil
	}
	if use == UseRefresh {
		return ErrRefreshSecretMissing
	}
	return ErrAccessSecretMissing
}

func (m *Manager) issue(p Payload, use Use, now time.Time) (string, error) {
	if err := m.check(use); err != nil {
		return "", err
	}

	claims, err := newClaims(p, use, m.cfg.Issuer, m.ttl(use), now)
	if err != nil {
		return "", err
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.secret(use)))
	if err != nil {
		return "", fmt.Errorf("jwtx: sign %s token: %w", use, err)
	}
	return signed, nil
}

func (m *Manager) verify(token string, use Use) (*Claims, bool) {
	if err := m.check(use); err != nil {
		panic(err)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	}
	if m.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.cfg.Issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(m.secret(use)), nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, false
	}

	// The secrets already separate the two kinds; this only matters when an
	// operator configures the same value for both.
	if claims.Use != use {
		return nil, false
	}
	return claims, true
}
