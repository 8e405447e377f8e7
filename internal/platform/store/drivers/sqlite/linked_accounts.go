package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/lectern/internal/platform/domain"
)

type linkedAccountsRepo struct {
	q dbtx
}

const linkedAccountColumns = `id, user_id, provider, access_token_enc, refresh_token_enc, expires_at, created_at, updated_at`

func scanLinkedAccount(row interface{ Scan(...any) error }) (domain.LinkedAccount, error) {
	var (
		la                   domain.LinkedAccount
		refresh, expiresAt   sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&la.ID, &la.UserID, &la.Provider, &la.AccessTokenEnc, &refresh, &expiresAt, &createdAt, &updatedAt); err != nil {
		return domain.LinkedAccount{}, mapNotFound(err)
	}

	la.RefreshTokenEnc = mapNullStringPtr(refresh)

	var err error
	if la.ExpiresAt, err = parseTimePtr(expiresAt); err != nil {
		return domain.LinkedAccount{}, err
	}
	if la.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.LinkedAccount{}, err
	}
	if la.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.LinkedAccount{}, err
	}
	return la, nil
}

// UpsertLinkedAccount keeps the original id and created_at when replacing a
// grant for the same provider.
func (r *linkedAccountsRepo) UpsertLinkedAccount(ctx context.Context, la domain.LinkedAccount) (domain.LinkedAccount, error) {
	row := r.q.QueryRowContext(ctx, `
		INSERT INTO linked_accounts (`+linkedAccountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, provider) DO UPDATE SET
			access_token_enc  = excluded.access_token_enc,
			refresh_token_enc = excluded.refresh_token_enc,
			expires_at        = excluded.expires_at,
			updated_at        = excluded.updated_at
		RETURNING `+linkedAccountColumns,
		la.ID, la.UserID, la.Provider, la.AccessTokenEnc,
		mapOptionalString(la.RefreshTokenEnc), fmtTimePtr(la.ExpiresAt),
		fmtTime(la.CreatedAt), fmtTime(la.UpdatedAt),
	)
	return scanLinkedAccount(row)
}

func (r *linkedAccountsRepo) GetLinkedAccount(ctx context.Context, userID, provider string) (domain.LinkedAccount, error) {
	return scanLinkedAccount(r.q.QueryRowContext(ctx,
		`SELECT `+linkedAccountColumns+` FROM linked_accounts WHERE user_id = ? AND provider = ?`,
		userID, provider,
	))
}

func (r *linkedAccountsRepo) ListLinkedAccounts(ctx context.Context, userID string) ([]domain.LinkedAccount, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+linkedAccountColumns+` FROM linked_accounts WHERE user_id = ? ORDER BY provider`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LinkedAccount
	for rows.Next() {
		la, err := scanLinkedAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, la)
	}
	return out, rows.Err()
}

func (r *linkedAccountsRepo) DeleteLinkedAccount(ctx context.Context, userID, provider string) error {
	return requireAffected(r.q.ExecContext(ctx,
		`DELETE FROM linked_accounts WHERE user_id = ? AND provider = ?`,
		userID, provider,
	))
}

func (r *linkedAccountsRepo) DeleteDeadLinkedAccounts(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		DELETE FROM linked_accounts
		WHERE refresh_token_enc IS NULL AND expires_at IS NOT NULL AND expires_at < ?`,
		fmtTime(before),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
