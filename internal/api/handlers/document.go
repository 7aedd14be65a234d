package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/harborlabs/docvault/internal/api"
	"github.com/harborlabs/docvault/internal/api/middleware"
	"github.com/harborlabs/docvault/internal/domain"
	"github.com/harborlabs/docvault/internal/service"
)

// IngestService defines the service interface for document ingestion
type IngestService interface {
	Ingest(ctx context.Context, input service.IngestInput) (*domain.Document, error)
}

// DocumentService defines the service interface for document retrieval
type DocumentService interface {
	GetByID(ctx context.Context, id string, role domain.Role) (*domain.Document, error)
	List(ctx context.Context, role domain.Role, cursor string, limit int) (*service.DocumentPageResult, error)
	Recent(ctx context.Context, role domain.Role, limit int) ([]*domain.Document, error)
	CategoryStats(ctx context.Context, role domain.Role) (map[domain.Category]int, error)
	Delete(ctx context.Context, id string, role domain.Role) error
	DownloadURL(ctx context.Context, id string, role domain.Role) (string, error)
}

type DocumentHandler struct {
	ingest IngestService
	docs   DocumentService
}

func NewDocumentHandler(ingest IngestService, docs DocumentService) *DocumentHandler {
	return &DocumentHandler{ingest: ingest, docs: docs}
}

type IngestRequest struct {
	Content  string `json:"content"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
	FileType string `json:"file_type"`
	Title    string `json:"title,omitempty"`
	Author   string `json:"author,omitempty"`
	Category string `json:"category,omitempty"`
	Date     string `json:"date,omitempty"`
}

type DocumentResponse struct {
	ID                string                  `json:"id"`
	Title             string                  `json:"title"`
	Author            string                  `json:"author"`
	Category          string                  `json:"category"`
	SuggestedCategory string                  `json:"suggested_category,omitempty"`
	UploadDate        string                  `json:"upload_date"`
	Uploader          string                  `json:"uploader"`
	FileName          string                  `json:"file_name"`
	FileSize          int64                   `json:"file_size"`
	FileType          string                  `json:"file_type"`
	Summary           string                  `json:"summary"`
	Content           string                  `json:"content,omitempty"`
	Metadata          domain.DocumentMetadata `json:"metadata"`
	CreatedAt         string                  `json:"created_at"`
}

// IngestResponse carries the computed document. PersistError is set when
// the pipeline succeeded but the save failed; the caller may retry the
// save without losing the computed record.
type IngestResponse struct {
	Document     *DocumentResponse `json:"document"`
	PersistError string            `json:"persist_error,omitempty"`
}

type DocumentListResponse struct {
	Items   []*DocumentResponse `json:"items"`
	Cursor  string              `json:"cursor,omitempty"`
	HasMore bool                `json:"has_more"`
}

func documentToResponse(d *domain.Document, includeContent bool) *DocumentResponse {
	resp := &DocumentResponse{
		ID:                d.ID,
		Title:             d.Title,
		Author:            d.Author,
		Category:          string(d.Category),
		SuggestedCategory: string(d.Metadata.SuggestedCategory),
		UploadDate:        d.UploadDate.Format("2006-01-02"),
		Uploader:          d.Uploader,
		FileName:          d.FileName,
		FileSize:          d.FileSize,
		FileType:          d.FileType,
		Summary:           d.Summary,
		Metadata:          d.Metadata,
		CreatedAt:         d.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if includeContent {
		resp.Content = d.Content
	}
	return resp
}

func (h *DocumentHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.FileName == "" {
		api.Error(w, http.StatusBadRequest, "file_name is required")
		return
	}
	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	input := service.IngestInput{
		Content:  req.Content,
		FileName: req.FileName,
		FileSize: req.FileSize,
		FileType: req.FileType,
		Uploader: *identity,
	}

	if req.Title != "" || req.Author != "" || req.Category != "" || req.Date != "" {
		input.Details = &service.IngestDetails{
			Title:    req.Title,
			Author:   req.Author,
			Category: domain.Category(req.Category),
			Date:     req.Date,
		}
	}

	doc, err := h.ingest.Ingest(r.Context(), input)
	if err != nil {
		if doc != nil {
			// Pipeline output survived a failed save; hand it back for retry.
			api.Success(w, http.StatusAccepted, IngestResponse{
				Document:     documentToResponse(doc, true),
				PersistError: err.Error(),
			})
			return
		}
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, IngestResponse{Document: documentToResponse(doc, true)})
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	page, err := h.docs.List(r.Context(), identity.Role, r.URL.Query().Get("cursor"), limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*DocumentResponse, 0, len(page.Items))
	for _, doc := range page.Items {
		items = append(items, documentToResponse(doc, false))
	}

	api.Success(w, http.StatusOK, DocumentListResponse{
		Items:   items,
		Cursor:  page.NextCursor,
		HasMore: page.HasMore,
	})
}

func (h *DocumentHandler) Recent(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	docs, err := h.docs.Recent(r.Context(), identity.Role, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		items = append(items, documentToResponse(doc, false))
	}

	api.Success(w, http.StatusOK, items)
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")

	doc, err := h.docs.GetByID(r.Context(), id, identity.Role)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, documentToResponse(doc, true))
}

func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")

	url, err := h.docs.DownloadURL(r.Context(), id, identity.Role)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"download_url": url})
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")

	if err := h.docs.Delete(r.Context(), id, identity.Role); err != nil {
		api.HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *DocumentHandler) CategoryStats(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stats, err := h.docs.CategoryStats(r.Context(), identity.Role)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	out := make(map[string]int, len(stats))
	for category, count := range stats {
		out[string(category)] = count
	}

	api.Success(w, http.StatusOK, out)
}
