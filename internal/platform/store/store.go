package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/lectern/internal/platform/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Sub-repositories hang off it so
// that a Tx exposes the same surface and nested transactions are impossible.
type Store interface {
	Users() Users
	LinkedAccounts() LinkedAccounts
	Documents() Documents

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing if fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser returns ErrAlreadyExists if the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	UpdatePasswordHash(ctx context.Context, userID, hash string) error

	// SetPendingMFASecret stores an encrypted TOTP secret without enabling MFA.
	// It returns ErrNotFound if MFA is already active.
	SetPendingMFASecret(ctx context.Context, userID, secretEnc string) error

	// EnableMFA activates the pending secret only if it is still secretEnc.
	// ErrNotFound means the enrollment was replaced or already activated.
	EnableMFA(ctx context.Context, userID, secretEnc string, at time.Time) error

	// DisableMFA clears the secret and the enabled timestamp if the stored
	// secret is still secretEnc.
	DisableMFA(ctx context.Context, userID, secretEnc string) error

	CountUsers(ctx context.Context) (int, error)

	// ClearStalePendingMFA drops enrollments never confirmed since before.
	ClearStalePendingMFA(ctx context.Context, before time.Time) (int64, error)
}

type LinkedAccounts interface {
	// UpsertLinkedAccount inserts or replaces the grant for (UserID, Provider).
	UpsertLinkedAccount(ctx context.Context, la domain.LinkedAccount) (domain.LinkedAccount, error)

	GetLinkedAccount(ctx context.Context, userID, provider string) (domain.LinkedAccount, error)

	// ListLinkedAccounts returns a user's grants ordered by provider.
	ListLinkedAccounts(ctx context.Context, userID string) ([]domain.LinkedAccount, error)

	// DeleteLinkedAccount returns ErrNotFound if nothing was deleted.
	DeleteLinkedAccount(ctx context.Context, userID, provider string) error

	// DeleteDeadLinkedAccounts removes grants that expired before the cutoff
	// and have no refresh token to renew them.
	DeleteDeadLinkedAccounts(ctx context.Context, before time.Time) (int64, error)
}

type Documents interface {
	CreateDocument(ctx context.Context, d domain.Document) error
	GetDocument(ctx context.Context, id string) (domain.Document, error)

	// ListDocuments returns every document, newest first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)
}
