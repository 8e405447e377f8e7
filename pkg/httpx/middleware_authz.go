package httpx

import "net/http"

// RequireRole lets the request through only if the authenticated role is one
// of roles. It must run after AuthnMiddleware.
func RequireRole(roles ...string) Middleware {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := allowed[Role(r.Context())]; !ok {
				WriteJSON(w, http.StatusForbidden, ErrorBody{
					Error:            "access_denied",
					ErrorDescription: "your role does not permit this action",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
