package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	platformhttp "github.com/aussiebroadwan/lectern/internal/platform/http"
	"github.com/aussiebroadwan/lectern/internal/platform/service"
	"github.com/aussiebroadwan/lectern/internal/platform/store/drivers/sqlite"
	"github.com/aussiebroadwan/lectern/pkg/authsdk"
	"github.com/aussiebroadwan/lectern/pkg/cryptox"
	"github.com/aussiebroadwan/lectern/pkg/httpx"
	"github.com/aussiebroadwan/lectern/pkg/jwtx"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

type stubStorage struct{}

func (stubStorage) PresignPut(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://storage.test/put/" + key, nil
}

func (stubStorage) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.test/get/" + key, nil
}

type options struct {
	limits httpx.RateLimitProfiles
	key    string
}

func generous() httpx.RateLimitProfiles {
	l := httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}
	return httpx.RateLimitProfiles{Strict: l, Moderate: l, Lenient: l}
}

func newServer(t *testing.T, opts ...func(*options)) (*httptest.Server, *authsdk.SDKClient) {
	t.Helper()

	o := options{limits: generous(), key: testKey}
	for _, fn := range opts {
		fn(&o)
	}

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "lectern.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	box := cryptox.NewSecretBox(o.key)
	tokens := jwtx.NewManager(jwtx.Config{
		AccessSecret:  "router-test-access",
		RefreshSecret: "router-test-refresh",
		Issuer:        "lectern-test",
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mfa := &service.MFAService{Store: st, Box: box, Issuer: "Lectern"}
	r := platformhttp.NewRouter(tokens, box, st, o.limits, "test", logger)
	r.AuthService = &service.AuthService{Store: st, Tokens: tokens, MFA: mfa}
	r.MFAService = mfa
	r.IntegrationService = &service.IntegrationService{Store: st, Box: box}
	r.DocumentService = &service.DocumentService{Store: st, Storage: stubStorage{}}
	r.EnableStorage()
	r.ApplyRoutes()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, authsdk.NewSDKClient(srv.URL)
}

func signup(t *testing.T, c *authsdk.SDKClient, email, role string) *authsdk.Session {
	t.Helper()
	ctx := context.Background()
	_, err := c.Register(ctx, authsdk.RegisterRequest{
		Email: email, Name: "Test User", Password: "Correct1horse", Role: role,
	})
	require.NoError(t, err)
	sess, err := c.Login(ctx, authsdk.LoginRequest{Email: email, Password: "Correct1horse"})
	require.NoError(t, err)
	return sess
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func readError(t *testing.T, resp *http.Response) authsdk.ErrorResponse {
	t.Helper()
	var body authsdk.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestRegisterLoginMe(t *testing.T) {
	_, c := newServer(t)
	ctx := context.Background()

	user, err := c.Register(ctx, authsdk.RegisterRequest{
		Email: "Ada@Example.edu", Name: "Ada", Password: "Analytical1", Role: "teacher",
	})
	require.NoError(t, err)
	require.Equal(t, "ada@example.edu", user.Email)
	require.Equal(t, "teacher", user.Role)
	require.False(t, user.MFAEnabled)

	tokens, err := c.LoginTokens(ctx, authsdk.LoginRequest{Email: "ada@example.edu", Password: "Analytical1"})
	require.NoError(t, err)
	require.Equal(t, "Bearer", tokens.TokenType)
	require.Equal(t, 900, tokens.ExpiresIn)

	sess := c.NewSessionFromTokens(tokens.AccessToken, tokens.RefreshToken, tokens.ExpiresIn)
	me, err := sess.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, user.ID, me.ID)

	refreshed, err := c.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, refreshed.AccessToken)

	_, err = c.Refresh(ctx, tokens.AccessToken)
	require.ErrorIs(t, err, authsdk.ErrInvalidToken)
}

func TestRegister_Errors(t *testing.T) {
	srv, c := newServer(t)
	ctx := context.Background()

	_, err := c.Register(ctx, authsdk.RegisterRequest{Email: "a@x.io", Name: "A", Password: "NoDigitsHere"})
	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	require.Equal(t, authsdk.ErrorCodeWeakPassword, apiErr.Code)
	require.Equal(t, cryptox.MsgPasswordNoDigit, apiErr.Description)

	_, err = c.Register(ctx, authsdk.RegisterRequest{Email: "a@x.io", Name: "A", Password: "Valid123", Role: "admin"})
	require.ErrorIs(t, err, authsdk.ErrInvalidRole)

	_, err = c.Register(ctx, authsdk.RegisterRequest{Email: "a@x.io", Name: "A", Password: "Valid123"})
	require.NoError(t, err)
	_, err = c.Register(ctx, authsdk.RegisterRequest{Email: "A@X.io", Name: "A", Password: "Valid123"})
	require.ErrorIs(t, err, authsdk.ErrEmailTaken)

	resp := postJSON(t, srv.URL+"/v1/auth/register", map[string]string{"email": "b@x.io", "is_admin": "yes"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, authsdk.ErrorCodeInvalidRequest, readError(t, resp).Error)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	srv, c := newServer(t)
	signup(t, c, "ada@example.edu", "teacher")

	wrongPassword := postJSON(t, srv.URL+"/v1/auth/login", authsdk.LoginRequest{Email: "ada@example.edu", Password: "Wrong1horse"})
	unknownEmail := postJSON(t, srv.URL+"/v1/auth/login", authsdk.LoginRequest{Email: "nobody@example.edu", Password: "Wrong1horse"})

	require.Equal(t, http.StatusUnauthorized, wrongPassword.StatusCode)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.StatusCode)

	a, err := io.ReadAll(wrongPassword.Body)
	require.NoError(t, err)
	b, err := io.ReadAll(unknownEmail.Body)
	require.NoError(t, err)
	require.JSONEq(t, string(a), string(b))
	require.Contains(t, string(a), authsdk.ErrorCodeInvalidCredentials)
}

func TestAuthn(t *testing.T) {
	srv, c := newServer(t)
	sess := signup(t, c, "ada@example.edu", "student")

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong scheme", "Basic " + sess.AccessToken()},
		{"refresh token", "Bearer " + sess.RefreshToken()},
		{"garbage", "Bearer nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, srv.URL+"/v1/me", nil)
			require.NoError(t, err)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			require.Contains(t, resp.Header.Get("WWW-Authenticate"), "invalid_token")
			require.Equal(t, authsdk.ErrorCodeInvalidToken, readError(t, resp).Error)
		})
	}
}

func TestChangePassword(t *testing.T) {
	_, c := newServer(t)
	ctx := context.Background()
	sess := signup(t, c, "ada@example.edu", "student")

	err := sess.ChangePassword(ctx, "Wrong1horse", "Brand1new")
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)

	require.NoError(t, sess.ChangePassword(ctx, "Correct1horse", "Brand1new"))
	_, err = c.LoginTokens(ctx, authsdk.LoginRequest{Email: "ada@example.edu", Password: "Brand1new"})
	require.NoError(t, err)
}

func TestMFAFlow(t *testing.T) {
	_, c := newServer(t)
	ctx := context.Background()
	sess := signup(t, c, "ada@example.edu", "teacher")

	enrollment, err := sess.EnrollTOTP(ctx)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(enrollment.URL, "otpauth://totp/Lectern:"))

	require.ErrorIs(t, sess.ConfirmTOTP(ctx, "000000"), authsdk.ErrInvalidRequest)

	code, err := totp.GenerateCode(enrollment.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, sess.ConfirmTOTP(ctx, code))

	_, err = sess.EnrollTOTP(ctx)
	require.ErrorIs(t, err, authsdk.ErrConflict)

	_, err = c.LoginTokens(ctx, authsdk.LoginRequest{Email: "ada@example.edu", Password: "Correct1horse"})
	require.ErrorIs(t, err, authsdk.ErrMFARequired)

	_, err = c.LoginTokens(ctx, authsdk.LoginRequest{Email: "ada@example.edu", Password: "Correct1horse", OTP: code})
	require.NoError(t, err)

	me, err := sess.Me(ctx)
	require.NoError(t, err)
	require.True(t, me.MFAEnabled)

	require.NoError(t, sess.DisableTOTP(ctx, code))
	_, err = c.LoginTokens(ctx, authsdk.LoginRequest{Email: "ada@example.edu", Password: "Correct1horse"})
	require.NoError(t, err)
}

func TestIntegrations(t *testing.T) {
	_, c := newServer(t)
	ctx := context.Background()
	sess := signup(t, c, "ada@example.edu", "teacher")

	expires := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	linked, err := sess.LinkAccount(ctx, "zoom", authsdk.LinkAccountRequest{
		AccessToken:  "zoom-access",
		RefreshToken: "zoom-refresh",
		ExpiresAt:    &expires,
	})
	require.NoError(t, err)
	require.Equal(t, "zoom", linked.Provider)
	require.True(t, linked.HasRefreshToken)

	list, err := sess.Integrations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	tok, err := sess.ProviderToken(ctx, "zoom")
	require.NoError(t, err)
	require.Equal(t, "zoom-access", tok.AccessToken)
	require.Equal(t, "zoom-refresh", tok.RefreshToken)
	require.True(t, expires.Equal(*tok.ExpiresAt))

	_, err = sess.LinkAccount(ctx, "BAD NAME", authsdk.LinkAccountRequest{AccessToken: "x"})
	require.ErrorIs(t, err, authsdk.ErrInvalidRequest)

	require.NoError(t, sess.Unlink(ctx, "zoom"))
	_, err = sess.ProviderToken(ctx, "zoom")
	require.ErrorIs(t, err, authsdk.ErrNotFound)
}

func TestDocuments(t *testing.T) {
	_, c := newServer(t)
	ctx := context.Background()
	teacher := signup(t, c, "ada@example.edu", "teacher")
	student := signup(t, c, "bob@example.edu", "student")

	_, err := student.CreateDocument(ctx, authsdk.CreateDocumentRequest{Title: "Sneaky", FileName: "x.pdf"})
	require.ErrorIs(t, err, authsdk.ErrAccessDenied)

	up, err := teacher.CreateDocument(ctx, authsdk.CreateDocumentRequest{
		Title: "Week 1 slides", FileName: "week1.pdf", ContentType: "application/pdf",
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(up.UploadURL, "https://storage.test/put/documents/"))
	require.True(t, strings.HasSuffix(up.UploadURL, "/week1.pdf"))
	require.Equal(t, "application/pdf", up.UploadHeaders["Content-Type"])

	docs, err := student.Documents(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, up.Document.ID, docs[0].ID)

	dl, err := student.DownloadURL(ctx, up.Document.ID)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(dl.URL, "https://storage.test/get/documents/"))

	_, err = student.DownloadURL(ctx, "missing")
	require.ErrorIs(t, err, authsdk.ErrNotFound)
}

func TestHealth(t *testing.T) {
	_, c := newServer(t)
	ctx := context.Background()

	live, err := c.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := c.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "ok", ready.Checks.Encryption)
	require.Equal(t, "ok", ready.Checks.Storage)
}

func TestReadyz_DegradedWithoutKey(t *testing.T) {
	srv, _ := newServer(t, func(o *options) { o.key = "" })

	resp, err := http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	var health authsdk.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	require.Equal(t, "degraded", health.Status)
	require.Equal(t, "ok", health.Checks.Database)
	require.Equal(t, "ok", health.Checks.Tokens)
	require.Contains(t, health.Checks.Encryption, "error")
}

func TestLoginRateLimit(t *testing.T) {
	srv, _ := newServer(t, func(o *options) {
		o.limits.Strict = httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
	})

	attempt := func(email string) int {
		return postJSON(t, srv.URL+"/v1/auth/login", authsdk.LoginRequest{Email: email, Password: "Wrong1horse"}).StatusCode
	}

	require.Equal(t, http.StatusUnauthorized, attempt("ada@example.edu"))
	require.Equal(t, http.StatusUnauthorized, attempt("ada@example.edu"))
	require.Equal(t, http.StatusTooManyRequests, attempt("ADA@example.edu"), "email key is case-insensitive")
	require.Equal(t, http.StatusUnauthorized, attempt("bob@example.edu"), "other accounts have their own bucket")
}
