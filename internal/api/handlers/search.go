package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/harborlabs/docvault/internal/api"
	"github.com/harborlabs/docvault/internal/api/middleware"
	"github.com/harborlabs/docvault/internal/domain"
	"github.com/harborlabs/docvault/internal/service"
)

// SearchService defines the service interface for document search
type SearchService interface {
	SemanticSearch(ctx context.Context, input service.SemanticSearchInput) ([]service.SearchResult, error)
	KeywordSearch(ctx context.Context, input service.KeywordSearchInput) ([]service.SearchResult, error)
}

type SearchHandler struct {
	search SearchService
}

func NewSearchHandler(search SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

type SearchRequest struct {
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

type SearchResultResponse struct {
	Document *DocumentResponse `json:"document"`
	Score    float32           `json:"score"`
	Snippet  string            `json:"snippet"`
}

type SearchResponse struct {
	Results []SearchResultResponse `json:"results"`
	Count   int                    `json:"count"`
}

func searchResultsToResponse(results []service.SearchResult) SearchResponse {
	out := make([]SearchResultResponse, 0, len(results))
	for _, r := range results {
		out = append(out, SearchResultResponse{
			Document: documentToResponse(r.Document, false),
			Score:    r.Score,
			Snippet:  r.Snippet,
		})
	}
	return SearchResponse{Results: out, Count: len(out)}
}

func (h *SearchHandler) Semantic(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.Limit < 0 {
		api.Error(w, http.StatusBadRequest, "invalid limit")
		return
	}

	results, err := h.search.SemanticSearch(r.Context(), service.SemanticSearchInput{
		Query:    req.Query,
		Role:     identity.Role,
		Category: domain.Category(req.Category),
		Limit:    req.Limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, searchResultsToResponse(results))
}

func (h *SearchHandler) Keyword(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	results, err := h.search.KeywordSearch(r.Context(), service.KeywordSearchInput{
		Query:    req.Query,
		Role:     identity.Role,
		Category: domain.Category(req.Category),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, searchResultsToResponse(results))
}
