package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// CreateDocument registers a document and returns a URL to PUT its content
// to. Teachers and admins only.
func (s *Session) CreateDocument(ctx context.Context, req CreateDocumentRequest) (*DocumentUploadResponse, error) {
	resp, err := s.doAuth(ctx, http.MethodPost, "/v1/documents", req)
	if err != nil {
		return nil, err
	}

	var out DocumentUploadResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) Documents(ctx context.Context) ([]DocumentResponse, error) {
	resp, err := s.doAuth(ctx, http.MethodGet, "/v1/documents", nil)
	if err != nil {
		return nil, err
	}

	var out DocumentListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Documents, nil
}

// DownloadURL returns a short-lived presigned GET URL for a document.
func (s *Session) DownloadURL(ctx context.Context, id string) (*DownloadResponse, error) {
	resp, err := s.doAuth(ctx, http.MethodGet, "/v1/documents/"+url.PathEscape(id)+"/download", nil)
	if err != nil {
		return nil, err
	}

	var out DownloadResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
