package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/lectern/internal/platform/domain"
	"github.com/aussiebroadwan/lectern/internal/platform/store"
	"github.com/aussiebroadwan/lectern/pkg/idx"
	"github.com/aussiebroadwan/lectern/pkg/slogx"
)

var (
	ErrInvalidProvider     = errors.New("invalid provider")
	ErrIntegrationNotFound = errors.New("integration not found")
)

// IntegrationService holds third-party OAuth grants (video conferencing,
// calendars) for a user. Tokens are sealed before they reach the store and
// opened only when the platform needs to call the provider.
type IntegrationService struct {
	Store store.Store
	Box   Sealer
	Now   func() time.Time
}

type LinkInput struct {
	Provider     string
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
}

// ProviderCredentials are the opened tokens for one provider.
type ProviderCredentials struct {
	Provider     string
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
}

// Link stores or replaces the grant for in.Provider.
func (s *IntegrationService) Link(ctx context.Context, userID string, in LinkInput) (domain.LinkedAccount, error) {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if !domain.ValidProvider(provider) {
		return domain.LinkedAccount{}, ErrInvalidProvider
	}
	if in.AccessToken == "" {
		return domain.LinkedAccount{}, fmt.Errorf("%w: access token is required", ErrInvalidInput)
	}

	accessEnc, err := s.Box.Encrypt(in.AccessToken)
	if err != nil {
		return domain.LinkedAccount{}, fmt.Errorf("seal access token: %w", err)
	}

	var refreshEnc *string
	if in.RefreshToken != "" {
		sealed, err := s.Box.Encrypt(in.RefreshToken)
		if err != nil {
			return domain.LinkedAccount{}, fmt.Errorf("seal refresh token: %w", err)
		}
		refreshEnc = &sealed
	}

	var expiresAt *time.Time
	if in.ExpiresAt != nil {
		t := in.ExpiresAt.UTC()
		expiresAt = &t
	}

	now := clock(s.Now)
	la, err := s.Store.LinkedAccounts().UpsertLinkedAccount(ctx, domain.LinkedAccount{
		ID:              idx.NewAt(now).String(),
		UserID:          userID,
		Provider:        provider,
		AccessTokenEnc:  accessEnc,
		RefreshTokenEnc: refreshEnc,
		ExpiresAt:       expiresAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return domain.LinkedAccount{}, fmt.Errorf("store linked account: %w", err)
	}

	slogx.FromContext(ctx).Info("account linked",
		slog.String("user_id", userID),
		slog.String("provider", provider),
	)
	return la, nil
}

func (s *IntegrationService) List(ctx context.Context, userID string) ([]domain.LinkedAccount, error) {
	return s.Store.LinkedAccounts().ListLinkedAccounts(ctx, userID)
}

// Credentials opens the stored tokens for provider. A blob that no longer
// decrypts (tampered row, rotated key) is a server fault, never a
// credential error, and is logged without its contents.
func (s *IntegrationService) Credentials(ctx context.Context, userID, provider string) (ProviderCredentials, error) {
	la, err := s.get(ctx, userID, provider)
	if err != nil {
		return ProviderCredentials{}, err
	}

	creds := ProviderCredentials{Provider: la.Provider, ExpiresAt: la.ExpiresAt}

	creds.AccessToken, err = s.Box.Decrypt(la.AccessTokenEnc)
	if err != nil {
		s.logOpenFailure(ctx, la, "access", err)
		return ProviderCredentials{}, fmt.Errorf("open access token: %w", err)
	}
	if la.RefreshTokenEnc != nil {
		creds.RefreshToken, err = s.Box.Decrypt(*la.RefreshTokenEnc)
		if err != nil {
			s.logOpenFailure(ctx, la, "refresh", err)
			return ProviderCredentials{}, fmt.Errorf("open refresh token: %w", err)
		}
	}
	return creds, nil
}

func (s *IntegrationService) Unlink(ctx context.Context, userID, provider string) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if !domain.ValidProvider(provider) {
		return ErrInvalidProvider
	}
	if err := s.Store.LinkedAccounts().DeleteLinkedAccount(ctx, userID, provider); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrIntegrationNotFound
		}
		return fmt.Errorf("delete linked account: %w", err)
	}
	return nil
}

func (s *IntegrationService) get(ctx context.Context, userID, provider string) (domain.LinkedAccount, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if !domain.ValidProvider(provider) {
		return domain.LinkedAccount{}, ErrInvalidProvider
	}
	la, err := s.Store.LinkedAccounts().GetLinkedAccount(ctx, userID, provider)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.LinkedAccount{}, ErrIntegrationNotFound
		}
		return domain.LinkedAccount{}, fmt.Errorf("get linked account: %w", err)
	}
	return la, nil
}

func (s *IntegrationService) logOpenFailure(ctx context.Context, la domain.LinkedAccount, which string, err error) {
	slogx.FromContext(ctx).Error("linked account token unreadable",
		slog.String("user_id", la.UserID),
		slog.String("provider", la.Provider),
		slog.String("which", which),
		slog.String("error", err.Error()),
	)
}
