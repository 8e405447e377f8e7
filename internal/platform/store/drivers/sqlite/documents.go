package sqlite

import (
	"context"

	"github.com/aussiebroadwan/lectern/internal/platform/domain"
)

type documentsRepo struct {
	q dbtx
}

const documentColumns = `id, owner_id, title, storage_key, content_type, created_at`

func scanDocument(row interface{ Scan(...any) error }) (domain.Document, error) {
	var (
		d         domain.Document
		createdAt string
	)
	if err := row.Scan(&d.ID, &d.OwnerID, &d.Title, &d.StorageKey, &d.ContentType, &createdAt); err != nil {
		return domain.Document{}, mapNotFound(err)
	}

	var err error
	if d.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Document{}, err
	}
	return d, nil
}

func (r *documentsRepo) CreateDocument(ctx context.Context, d domain.Document) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO documents (`+documentColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.OwnerID, d.Title, d.StorageKey, d.ContentType, fmtTime(d.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *documentsRepo) GetDocument(ctx context.Context, id string) (domain.Document, error) {
	return scanDocument(r.q.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id))
}

func (r *documentsRepo) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
