package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/lectern/internal/platform/domain"
	"github.com/aussiebroadwan/lectern/internal/platform/store"
	"github.com/aussiebroadwan/lectern/pkg/idx"
	"github.com/aussiebroadwan/lectern/pkg/slogx"
)

const (
	DefaultDocumentURLTTL = 15 * time.Minute
	defaultContentType    = "application/octet-stream"
	maxTitleLength        = 200
	maxFileNameLength     = 128
)

var (
	ErrDocumentNotFound   = errors.New("document not found")
	ErrStorageUnavailable = errors.New("document storage is not configured")
)

// ObjectStorage presigns direct upload and download URLs.
// *storage.S3 satisfies it.
type ObjectStorage interface {
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type DocumentService struct {
	Store   store.Store
	Storage ObjectStorage // nil disables uploads and downloads
	URLTTL  time.Duration
	Now     func() time.Time
}

type CreateDocumentInput struct {
	Title       string
	FileName    string
	ContentType string
}

// Upload is a freshly recorded document and where to PUT its bytes. The
// presigned URL does not sign Content-Type, so Headers lists what the
// uploader must send for the stored object to carry the recorded type.
type Upload struct {
	Document  domain.Document
	URL       string
	Headers   map[string]string
	ExpiresAt time.Time
}

// SignedURL is a time limited link to an object.
type SignedURL struct {
	URL       string
	ExpiresAt time.Time
}

// CreateUpload records document metadata and presigns the upload. Only roles
// that can publish may call it.
func (s *DocumentService) CreateUpload(ctx context.Context, ownerID string, role domain.Role, in CreateDocumentInput) (Upload, error) {
	if !role.CanPublish() {
		return Upload{}, ErrForbidden
	}
	if s.Storage == nil {
		return Upload{}, ErrStorageUnavailable
	}

	title := strings.TrimSpace(in.Title)
	if title == "" || utf8.RuneCountInString(title) > maxTitleLength {
		return Upload{}, fmt.Errorf("%w: title must be 1-%d characters", ErrInvalidInput, maxTitleLength)
	}
	fileName := SanitizeFileName(in.FileName)
	contentType := strings.TrimSpace(in.ContentType)
	if contentType == "" {
		contentType = defaultContentType
	}

	now := clock(s.Now)
	doc := domain.Document{
		ID:          idx.NewAt(now).String(),
		OwnerID:     ownerID,
		Title:       title,
		ContentType: contentType,
		CreatedAt:   now,
	}
	doc.StorageKey = path.Join("documents", ownerID, doc.ID, fileName)

	ttl := s.ttl()
	url, err := s.Storage.PresignPut(ctx, doc.StorageKey, contentType, ttl)
	if err != nil {
		return Upload{}, fmt.Errorf("presign upload: %w", err)
	}
	if err := s.Store.Documents().CreateDocument(ctx, doc); err != nil {
		return Upload{}, fmt.Errorf("create document: %w", err)
	}

	slogx.FromContext(ctx).Info("document created",
		slog.String("document_id", doc.ID),
		slog.String("owner_id", ownerID),
	)
	return Upload{
		Document:  doc,
		URL:       url,
		Headers:   map[string]string{"Content-Type": contentType},
		ExpiresAt: now.Add(ttl),
	}, nil
}

// DownloadURL presigns a GET for any authenticated user.
func (s *DocumentService) DownloadURL(ctx context.Context, id string) (SignedURL, error) {
	if s.Storage == nil {
		return SignedURL{}, ErrStorageUnavailable
	}

	doc, err := s.Store.Documents().GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return SignedURL{}, ErrDocumentNotFound
		}
		return SignedURL{}, fmt.Errorf("get document: %w", err)
	}

	ttl := s.ttl()
	url, err := s.Storage.PresignGet(ctx, doc.StorageKey, ttl)
	if err != nil {
		return SignedURL{}, fmt.Errorf("presign download: %w", err)
	}
	return SignedURL{URL: url, ExpiresAt: clock(s.Now).Add(ttl)}, nil
}

func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.Store.Documents().ListDocuments(ctx)
}

func (s *DocumentService) ttl() time.Duration {
	if s.URLTTL <= 0 {
		return DefaultDocumentURLTTL
	}
	return s.URLTTL
}

// SanitizeFileName reduces name to a safe single path segment made of
// letters, digits, dot, dash and underscore.
func SanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
		if b.Len() >= maxFileNameLength {
			break
		}
	}

	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}
