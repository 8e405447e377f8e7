package authsdk

import (
	"context"
	"net/http"
)

// Me returns the signed-in user's profile.
func (s *Session) Me(ctx context.Context) (*UserResponse, error) {
	resp, err := s.doAuth(ctx, http.MethodGet, "/v1/me", nil)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword replaces the password. Existing tokens stay valid until
// they expire.
func (s *Session) ChangePassword(ctx context.Context, current, next string) error {
	resp, err := s.doAuth(ctx, http.MethodPut, "/v1/me/password", ChangePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
	})
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
