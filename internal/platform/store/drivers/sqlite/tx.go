package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/lectern/internal/platform/store"
)

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the caller commits or rolls back and the pool stays open.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(context.Context) error { return nil }

// Nested transactions are not supported.
func (t *txStore) Tx(context.Context) (store.Tx, error) { return nil, sql.ErrTxDone }

func (t *txStore) WithTx(context.Context, func(tx store.Tx) error) error { return sql.ErrTxDone }

func (t *txStore) ApplyMigrations() error { return nil }

func (t *txStore) Users() store.Users                   { return &usersRepo{q: t.tx} }
func (t *txStore) LinkedAccounts() store.LinkedAccounts { return &linkedAccountsRepo{q: t.tx} }
func (t *txStore) Documents() store.Documents           { return &documentsRepo{q: t.tx} }
