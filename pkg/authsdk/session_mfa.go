package authsdk

import (
	"context"
	"net/http"
)

// EnrollTOTP starts TOTP enrollment. The secret is not active until
// ConfirmTOTP succeeds.
func (s *Session) EnrollTOTP(ctx context.Context) (*TOTPEnrollResponse, error) {
	resp, err := s.doAuth(ctx, http.MethodPost, "/v1/mfa/totp/enroll", nil)
	if err != nil {
		return nil, err
	}

	var out TOTPEnrollResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmTOTP activates a pending enrollment with a current code.
func (s *Session) ConfirmTOTP(ctx context.Context, code string) error {
	resp, err := s.doAuth(ctx, http.MethodPost, "/v1/mfa/totp/confirm", TOTPCodeRequest{Code: code})
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// DisableTOTP turns MFA off. A current code is required.
func (s *Session) DisableTOTP(ctx context.Context, code string) error {
	resp, err := s.doAuth(ctx, http.MethodDelete, "/v1/mfa/totp", TOTPCodeRequest{Code: code})
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
