package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// LinkAccount stores (or replaces) the grant for provider.
func (s *Session) LinkAccount(ctx context.Context, provider string, req LinkAccountRequest) (*LinkedAccountResponse, error) {
	resp, err := s.doAuth(ctx, http.MethodPut, "/v1/integrations/"+url.PathEscape(provider), req)
	if err != nil {
		return nil, err
	}

	var out LinkedAccountResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Integrations lists linked providers without their tokens.
func (s *Session) Integrations(ctx context.Context) ([]LinkedAccountResponse, error) {
	resp, err := s.doAuth(ctx, http.MethodGet, "/v1/integrations", nil)
	if err != nil {
		return nil, err
	}

	var out IntegrationListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Integrations, nil
}

// ProviderToken returns the decrypted grant for provider.
func (s *Session) ProviderToken(ctx context.Context, provider string) (*ProviderTokenResponse, error) {
	resp, err := s.doAuth(ctx, http.MethodGet, "/v1/integrations/"+url.PathEscape(provider)+"/token", nil)
	if err != nil {
		return nil, err
	}

	var out ProviderTokenResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Unlink deletes the stored grant for provider.
func (s *Session) Unlink(ctx context.Context, provider string) error {
	resp, err := s.doAuth(ctx, http.MethodDelete, "/v1/integrations/"+url.PathEscape(provider), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
