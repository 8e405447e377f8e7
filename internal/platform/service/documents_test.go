package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/lectern/internal/platform/domain"
	"github.com/aussiebroadwan/lectern/internal/platform/service"
	"github.com/stretchr/testify/require"
)

type presign struct {
	Method      string
	Key         string
	ContentType string
	TTL         time.Duration
}

type fakeStorage struct {
	mu    sync.Mutex
	calls []presign
	err   error
}

func (s *fakeStorage) PresignPut(_ context.Context, key, contentType string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.calls = append(s.calls, presign{"PUT", key, contentType, ttl})
	return "https://storage.test/put/" + key, nil
}

func (s *fakeStorage) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.calls = append(s.calls, presign{"GET", key, "", ttl})
	return "https://storage.test/get/" + key, nil
}

func TestDocuments_CreateUploadAndDownload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	teacher := f.register(t, "ada@example.edu", domain.RoleTeacher)

	up, err := f.documents.CreateUpload(ctx, teacher.ID, teacher.Role, service.CreateDocumentInput{
		Title:       " Week 1 notes ",
		FileName:    "../Week 1/notes (final).pdf",
		ContentType: "application/pdf",
	})
	require.NoError(t, err)
	require.Equal(t, "Week 1 notes", up.Document.Title)
	require.Equal(t, "documents/"+teacher.ID+"/"+up.Document.ID+"/notes_final.pdf", up.Document.StorageKey)
	require.Equal(t, "https://storage.test/put/"+up.Document.StorageKey, up.URL)
	require.Equal(t, map[string]string{"Content-Type": "application/pdf"}, up.Headers)
	require.Equal(t, t0.Add(10*time.Minute), up.ExpiresAt)
	require.Equal(t, presign{"PUT", up.Document.StorageKey, "application/pdf", 10 * time.Minute}, f.storage.calls[0])

	dl, err := f.documents.DownloadURL(ctx, up.Document.ID)
	require.NoError(t, err)
	require.Equal(t, "https://storage.test/get/"+up.Document.StorageKey, dl.URL)
	require.Equal(t, t0.Add(10*time.Minute), dl.ExpiresAt)

	list, err := f.documents.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, up.Document.ID, list[0].ID)
}

func TestDocuments_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	student := f.register(t, "bob@example.edu", domain.RoleStudent)
	admin, err := f.auth.CreateAdmin(ctx, "root@example.edu", "Root", "Sup3rSecret")
	require.NoError(t, err)

	_, err = f.documents.CreateUpload(ctx, student.ID, student.Role, service.CreateDocumentInput{Title: "x"})
	require.ErrorIs(t, err, service.ErrForbidden)
	require.Empty(t, f.storage.calls, "no URL minted for a forbidden caller")

	_, err = f.documents.CreateUpload(ctx, admin.ID, admin.Role, service.CreateDocumentInput{Title: "  "})
	require.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = f.documents.DownloadURL(ctx, "missing")
	require.ErrorIs(t, err, service.ErrDocumentNotFound)

	up, err := f.documents.CreateUpload(ctx, admin.ID, admin.Role, service.CreateDocumentInput{Title: "Syllabus"})
	require.NoError(t, err)
	require.Equal(t, "application/octet-stream", up.Document.ContentType)
	require.Equal(t, "application/octet-stream", up.Headers["Content-Type"], "default type is what the uploader sends")
	require.Equal(t, "documents/"+admin.ID+"/"+up.Document.ID+"/file", up.Document.StorageKey)
}

func TestDocuments_StorageFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	disabled := &service.DocumentService{Store: f.store, Now: now}
	_, err := disabled.CreateUpload(ctx, "u", domain.RoleTeacher, service.CreateDocumentInput{Title: "x"})
	require.ErrorIs(t, err, service.ErrStorageUnavailable)
	_, err = disabled.DownloadURL(ctx, "d")
	require.ErrorIs(t, err, service.ErrStorageUnavailable)

	boom := errors.New("presign boom")
	f.storage.err = boom
	_, err = f.documents.CreateUpload(ctx, "u", domain.RoleTeacher, service.CreateDocumentInput{Title: "x"})
	require.ErrorIs(t, err, boom)

	list, err := f.documents.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list, "nothing recorded when presigning fails")
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"notes.pdf", "notes.pdf"},
		{"My Notes.pdf", "My_Notes.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\ada\slides.pptx`, "slides.pptx"},
		{".hidden", "hidden"},
		{"", "file"},
		{"..", "file"},
		{"résumé.doc", "rsum.doc"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, service.SanitizeFileName(tt.in))
		})
	}
}
