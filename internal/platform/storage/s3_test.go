package storage_test

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/aussiebroadwan/lectern/internal/platform/storage"
	"github.com/stretchr/testify/require"
)

func newS3(t *testing.T) *storage.S3 {
	t.Helper()
	s, err := storage.NewS3(context.Background(), storage.Config{
		Bucket:    "lectern-docs",
		Endpoint:  "http://127.0.0.1:9000",
		AccessKey: "minio",
		SecretKey: "minio-secret",
	})
	require.NoError(t, err)
	return s
}

func TestNewS3_RequiresBucket(t *testing.T) {
	_, err := storage.NewS3(context.Background(), storage.Config{})
	require.ErrorIs(t, err, storage.ErrBucketMissing)
	require.False(t, storage.Config{Bucket: "  "}.Enabled())
}

func TestS3_PresignPut(t *testing.T) {
	s := newS3(t)
	require.Equal(t, "lectern-docs", s.Bucket())

	raw, err := s.PresignPut(context.Background(), "documents/u1/d1/notes.pdf", "application/pdf", 10*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9000", u.Host)
	require.Equal(t, "/lectern-docs/documents/u1/d1/notes.pdf", u.Path, "path-style addressing")

	q := u.Query()
	require.Equal(t, "600", q.Get("X-Amz-Expires"))
	require.Equal(t, "AWS4-HMAC-SHA256", q.Get("X-Amz-Algorithm"))
	require.Contains(t, q.Get("X-Amz-Credential"), "minio/")
	require.Contains(t, q.Get("X-Amz-Credential"), storage.DefaultRegion)
	require.Equal(t, "host", q.Get("X-Amz-SignedHeaders"))
	require.NotEmpty(t, q.Get("X-Amz-Signature"))
}

func TestS3_PresignGet(t *testing.T) {
	s := newS3(t)

	raw, err := s.PresignGet(context.Background(), "documents/u1/d1/notes.pdf", 15*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "/lectern-docs/documents/u1/d1/notes.pdf", u.Path)
	require.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
}

func TestS3_DistinctSignaturesPerKey(t *testing.T) {
	s := newS3(t)

	a, err := s.PresignGet(context.Background(), "documents/a", time.Minute)
	require.NoError(t, err)
	b, err := s.PresignGet(context.Background(), "documents/b", time.Minute)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
