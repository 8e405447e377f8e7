package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/lectern/internal/platform/domain"
)

type usersRepo struct {
	q dbtx
}

const userColumns = `id, email, name, role, password_hash, mfa_secret_enc, mfa_enabled_at, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u                    domain.User
		role                 string
		secret, enabledAt    sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &u.PasswordHash, &secret, &enabledAt, &createdAt, &updatedAt); err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.Role = domain.Role(role)
	u.MFASecretEnc = mapNullStringPtr(secret)

	var err error
	if u.MFAEnabledAt, err = parseTimePtr(enabledAt); err != nil {
		return domain.User{}, err
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.User{}, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, string(u.Role), u.PasswordHash,
		mapOptionalString(u.MFASecretEnc), fmtTimePtr(u.MFAEnabledAt),
		fmtTime(u.CreatedAt), fmtTime(u.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	return requireAffected(r.q.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, fmtTime(time.Now()), userID,
	))
}

func (r *usersRepo) SetPendingMFASecret(ctx context.Context, userID, secretEnc string) error {
	return requireAffected(r.q.ExecContext(ctx,
		`UPDATE users SET mfa_secret_enc = ?, updated_at = ? WHERE id = ? AND mfa_enabled_at IS NULL`,
		secretEnc, fmtTime(time.Now()), userID,
	))
}

func (r *usersRepo) EnableMFA(ctx context.Context, userID, secretEnc string, at time.Time) error {
	return requireAffected(r.q.ExecContext(ctx, `
		UPDATE users SET mfa_enabled_at = ?, updated_at = ?
		WHERE id = ? AND mfa_secret_enc = ? AND mfa_enabled_at IS NULL`,
		fmtTime(at), fmtTime(time.Now()), userID, secretEnc,
	))
}

func (r *usersRepo) DisableMFA(ctx context.Context, userID, secretEnc string) error {
	return requireAffected(r.q.ExecContext(ctx, `
		UPDATE users SET mfa_secret_enc = NULL, mfa_enabled_at = NULL, updated_at = ?
		WHERE id = ? AND mfa_secret_enc = ?`,
		fmtTime(time.Now()), userID, secretEnc,
	))
}

func (r *usersRepo) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (r *usersRepo) ClearStalePendingMFA(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET mfa_secret_enc = NULL
		WHERE mfa_secret_enc IS NOT NULL AND mfa_enabled_at IS NULL AND updated_at < ?`,
		fmtTime(before),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
