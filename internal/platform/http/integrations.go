package http

import (
	"net/http"

	"github.com/aussiebroadwan/lectern/internal/platform/service"
	"github.com/aussiebroadwan/lectern/pkg/authsdk"
	"github.com/aussiebroadwan/lectern/pkg/httpx"
)

// IntegrationsHandler manages the caller's linked third-party accounts.
type IntegrationsHandler struct {
	IntegrationService *service.IntegrationService
}

// HandleList handles GET /v1/integrations
//
//	@Summary		List linked accounts
//	@Description	Token values are never included; use the token endpoint for a single provider.
//	@Tags			Integrations
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.IntegrationListResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Router			/v1/integrations [get].
func (h *IntegrationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.IntegrationService.List(r.Context(), httpx.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := authsdk.IntegrationListResponse{Integrations: make([]authsdk.LinkedAccountResponse, 0, len(accounts))}
	for _, la := range accounts {
		out.Integrations = append(out.Integrations, toLinkedAccountResponse(la))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleLink handles PUT /v1/integrations/{provider}
//
//	@Summary		Link an account
//	@Description	Stores the OAuth tokens for provider, encrypted at rest. Replaces any existing link.
//	@Tags			Integrations
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			provider	path		string						true	"Provider key"	example(zoom)
//	@Param			request		body		authsdk.LinkAccountRequest	true	"Provider tokens"
//	@Success		200			{object}	authsdk.LinkedAccountResponse
//	@Failure		400			{object}	authsdk.ErrorResponse	"Malformed request or provider"
//	@Failure		401			{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Router			/v1/integrations/{provider} [put].
func (h *IntegrationsHandler) HandleLink(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LinkAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadJSON(w)
		return
	}

	la, err := h.IntegrationService.Link(r.Context(), httpx.UserID(r.Context()), service.LinkInput{
		Provider:     r.PathValue("provider"),
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		ExpiresAt:    req.ExpiresAt,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toLinkedAccountResponse(la))
}

// HandleToken handles GET /v1/integrations/{provider}/token
//
//	@Summary		Read provider tokens
//	@Description	Decrypts and returns the stored tokens so the caller can talk to the provider.
//	@Tags			Integrations
//	@Security		BearerAuth
//	@Produce		json
//	@Param			provider	path		string	true	"Provider key"	example(zoom)
//	@Success		200			{object}	authsdk.ProviderTokenResponse
//	@Failure		401			{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		404			{object}	authsdk.ErrorResponse	"Not linked"
//	@Failure		500			{object}	authsdk.ErrorResponse	"Stored tokens unreadable"
//	@Router			/v1/integrations/{provider}/token [get].
func (h *IntegrationsHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	creds, err := h.IntegrationService.Credentials(r.Context(), httpx.UserID(r.Context()), r.PathValue("provider"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.ProviderTokenResponse{
		Provider:     creds.Provider,
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		ExpiresAt:    creds.ExpiresAt,
	})
}

// HandleUnlink handles DELETE /v1/integrations/{provider}
//
//	@Summary		Unlink an account
//	@Tags			Integrations
//	@Security		BearerAuth
//	@Param			provider	path	string	true	"Provider key"	example(zoom)
//	@Success		204
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		404	{object}	authsdk.ErrorResponse	"Not linked"
//	@Router			/v1/integrations/{provider} [delete].
func (h *IntegrationsHandler) HandleUnlink(w http.ResponseWriter, r *http.Request) {
	if err := h.IntegrationService.Unlink(r.Context(), httpx.UserID(r.Context()), r.PathValue("provider")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
