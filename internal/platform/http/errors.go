package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/lectern/internal/platform/service"
	"github.com/aussiebroadwan/lectern/pkg/authsdk"
	"github.com/aussiebroadwan/lectern/pkg/slogx"
)

// writeServiceError maps a service error onto the public error contract.
// Credential failures collapse to one generic response each; anything
// unrecognised is logged and reported as server_error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var weak *service.WeakPasswordError

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		authsdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrUserNotFound):
		authsdk.ErrInvalidToken.WriteError(w)
	case errors.Is(err, service.ErrMFARequired):
		authsdk.ErrMFARequired.WriteError(w)
	case errors.As(err, &weak):
		authsdk.ErrWeakPassword.WithDescription(weak.Message).WriteError(w)
	case errors.Is(err, service.ErrEmailTaken):
		authsdk.ErrEmailTaken.WriteError(w)
	case errors.Is(err, service.ErrInvalidRole):
		authsdk.ErrInvalidRole.WriteError(w)
	case errors.Is(err, service.ErrInvalidInput):
		authsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
	case errors.Is(err, service.ErrInvalidProvider):
		authsdk.ErrInvalidRequest.WithDescription("provider must be lowercase letters, digits, '-' or '_'").WriteError(w)
	case errors.Is(err, service.ErrInvalidTOTPCode):
		authsdk.ErrInvalidRequest.WithDescription("invalid TOTP code").WriteError(w)
	case errors.Is(err, service.ErrMFAAlreadyEnabled),
		errors.Is(err, service.ErrMFANotEnrolled),
		errors.Is(err, service.ErrMFANotEnabled):
		authsdk.ErrConflict.WithDescription(err.Error()).WriteError(w)
	case errors.Is(err, service.ErrIntegrationNotFound), errors.Is(err, service.ErrDocumentNotFound):
		authsdk.ErrNotFound.WriteError(w)
	case errors.Is(err, service.ErrForbidden):
		authsdk.ErrAccessDenied.WriteError(w)
	case errors.Is(err, service.ErrStorageUnavailable):
		authsdk.ErrUnavailable.WithDescription("document storage is not configured").WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
	}
}

func writeBadJSON(w http.ResponseWriter) {
	authsdk.ErrInvalidRequest.WithDescription("request body must be a JSON object with known fields").WriteError(w)
}
