package http

import (
	"github.com/aussiebroadwan/lectern/internal/platform/domain"
	"github.com/aussiebroadwan/lectern/internal/platform/service"
	"github.com/aussiebroadwan/lectern/pkg/authsdk"
)

func toUserResponse(u domain.User) authsdk.UserResponse {
	return authsdk.UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       u.Role.String(),
		MFAEnabled: u.MFAEnabled(),
		CreatedAt:  u.CreatedAt,
	}
}

func toTokenResponse(s service.Session) authsdk.TokenResponse {
	return authsdk.TokenResponse{
		AccessToken:  s.Tokens.AccessToken,
		RefreshToken: s.Tokens.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.Tokens.ExpiresIn.Seconds()),
	}
}

func toLinkedAccountResponse(la domain.LinkedAccount) authsdk.LinkedAccountResponse {
	return authsdk.LinkedAccountResponse{
		Provider:        la.Provider,
		HasRefreshToken: la.RefreshTokenEnc != nil,
		ExpiresAt:       la.ExpiresAt,
		LinkedAt:        la.UpdatedAt,
	}
}

func toDocumentResponse(d domain.Document) authsdk.DocumentResponse {
	return authsdk.DocumentResponse{
		ID:          d.ID,
		OwnerID:     d.OwnerID,
		Title:       d.Title,
		ContentType: d.ContentType,
		CreatedAt:   d.CreatedAt,
	}
}
