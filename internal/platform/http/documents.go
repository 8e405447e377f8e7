package http

import (
	"net/http"

	"github.com/aussiebroadwan/lectern/internal/platform/domain"
	"github.com/aussiebroadwan/lectern/internal/platform/service"
	"github.com/aussiebroadwan/lectern/pkg/authsdk"
	"github.com/aussiebroadwan/lectern/pkg/httpx"
)

type DocumentsHandler struct {
	DocumentService *service.DocumentService
}

// HandleList handles GET /v1/documents
//
//	@Summary		List documents
//	@Tags			Documents
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.DocumentListResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Router			/v1/documents [get].
func (h *DocumentsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	docs, err := h.DocumentService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := authsdk.DocumentListResponse{Documents: make([]authsdk.DocumentResponse, 0, len(docs))}
	for _, d := range docs {
		out.Documents = append(out.Documents, toDocumentResponse(d))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleCreate handles POST /v1/documents
//
//	@Summary		Create a document
//	@Description	Records the document and returns a presigned URL to PUT the file to.
//	@Description	Only teachers and admins may publish.
//	@Description	Send upload_headers with the PUT; the URL signature does not cover Content-Type.
//	@Tags			Documents
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.CreateDocumentRequest	true	"Document metadata"
//	@Success		201		{object}	authsdk.DocumentUploadResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"Malformed request"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		403		{object}	authsdk.ErrorResponse	"Role may not publish"
//	@Failure		503		{object}	authsdk.ErrorResponse	"Storage not configured"
//	@Router			/v1/documents [post].
func (h *DocumentsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CreateDocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadJSON(w)
		return
	}

	ctx := r.Context()
	up, err := h.DocumentService.CreateUpload(ctx, httpx.UserID(ctx), domain.Role(httpx.Role(ctx)), service.CreateDocumentInput{
		Title:       req.Title,
		FileName:    req.FileName,
		ContentType: req.ContentType,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, authsdk.DocumentUploadResponse{
		Document:  toDocumentResponse(up.Document),
		UploadURL:     up.URL,
		UploadHeaders: up.Headers,
		ExpiresAt:     up.ExpiresAt,
	})
}

// HandleDownload handles GET /v1/documents/{id}/download
//
//	@Summary		Download link
//	@Tags			Documents
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"Document ID"
//	@Success		200	{object}	authsdk.DownloadResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		404	{object}	authsdk.ErrorResponse	"No such document"
//	@Failure		503	{object}	authsdk.ErrorResponse	"Storage not configured"
//	@Router			/v1/documents/{id}/download [get].
func (h *DocumentsHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	link, err := h.DocumentService.DownloadURL(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.DownloadResponse{URL: link.URL, ExpiresAt: link.ExpiresAt})
}
