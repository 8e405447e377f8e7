package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/lectern/pkg/cryptox"
	"github.com/aussiebroadwan/lectern/pkg/jwtx"
	"github.com/aussiebroadwan/lectern/pkg/slogx"
)

// AccessVerifier is the part of jwtx.Manager the middleware needs.
type AccessVerifier interface {
	VerifyAccess(token string) (*jwtx.Claims, bool)
}

// AuthnMiddleware requires a valid access token in the Authorization header.
// Every failure gets the same 401; the reason is never reported to the client.
// A jwtx.Manager without an access secret panics on verify, so install
// RecoverMiddleware ahead of it.
func AuthnMiddleware(v AccessVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := BearerToken(r)
			if !ok {
				WriteBearerError(w)
				return
			}

			claims, ok := v.VerifyAccess(raw)
			if !ok {
				log.Info("access token rejected", "token_fp", cryptox.FingerprintToken(raw))
				WriteBearerError(w)
				return
			}

			ctx = WithClaims(ctx, claims)
			ctx = slogx.WithContext(ctx, log.With("user_id", claims.Subject))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// WriteBearerError writes an RFC 6750 invalid_token response.
func WriteBearerError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	WriteJSON(w, http.StatusUnauthorized, ErrorBody{
		Error:            "invalid_token",
		ErrorDescription: "the access token is missing, invalid or expired",
	})
}
