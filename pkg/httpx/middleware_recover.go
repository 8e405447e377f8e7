package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/aussiebroadwan/lectern/pkg/slogx"
)

// RecoverMiddleware turns a panic in a later handler into a logged 500.
// http.ErrAbortHandler is re-raised so the server can abort the connection.
func RecoverMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				slogx.FromContext(r.Context()).Error("handler panic",
					"panic", fmt.Sprint(rec),
					"stack", string(debug.Stack()),
				)
				WriteJSON(w, http.StatusInternalServerError, ErrorBody{Error: "server_error"})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
