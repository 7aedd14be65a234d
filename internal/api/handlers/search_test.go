package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/harborlabs/docvault/internal/domain"
	"github.com/harborlabs/docvault/internal/service"
)

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) SemanticSearch(ctx context.Context, input service.SemanticSearchInput) ([]service.SearchResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.SearchResult), args.Error(1)
}

func (m *MockSearchService) KeywordSearch(ctx context.Context, input service.KeywordSearchInput) ([]service.SearchResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.SearchResult), args.Error(1)
}

func TestSearchHandler_Semantic(t *testing.T) {
	t.Run("returns ranked results", func(t *testing.T) {
		search := new(MockSearchService)
		results := []service.SearchResult{
			{Document: newTestDocument(), Score: 0.92, Snippet: "Invoice #123 payment due..."},
		}
		search.On("SemanticSearch", mock.Anything, service.SemanticSearchInput{
			Query:    "invoice payment",
			Role:     domain.RoleFinance,
			Category: domain.CategoryFinance,
			Limit:    5,
		}).Return(results, nil)

		handler := NewSearchHandler(search)

		body, _ := json.Marshal(SearchRequest{Query: "invoice payment", Category: "Finance", Limit: 5})
		req := requestWithIdentity(http.MethodPost, "/search/semantic", body, domain.RoleFinance)
		w := httptest.NewRecorder()

		handler.Semantic(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp SearchResponse
		decodeData(t, w, &resp)
		assert.Equal(t, 1, resp.Count)
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "doc-123", resp.Results[0].Document.ID)
		assert.InDelta(t, 0.92, resp.Results[0].Score, 0.001)
		assert.Equal(t, "Invoice #123 payment due...", resp.Results[0].Snippet)
		assert.Empty(t, resp.Results[0].Document.Content)
		search.AssertExpectations(t)
	})

	t.Run("empty results keep count zero", func(t *testing.T) {
		search := new(MockSearchService)
		search.On("SemanticSearch", mock.Anything, mock.Anything).Return([]service.SearchResult{}, nil)

		handler := NewSearchHandler(search)

		body, _ := json.Marshal(SearchRequest{Query: "nothing matches"})
		req := requestWithIdentity(http.MethodPost, "/search/semantic", body, domain.RoleAdmin)
		w := httptest.NewRecorder()

		handler.Semantic(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp SearchResponse
		decodeData(t, w, &resp)
		assert.Equal(t, 0, resp.Count)
		assert.Empty(t, resp.Results)
	})

	t.Run("requires query", func(t *testing.T) {
		handler := NewSearchHandler(new(MockSearchService))

		body, _ := json.Marshal(SearchRequest{Category: "Finance"})
		req := requestWithIdentity(http.MethodPost, "/search/semantic", body, domain.RoleFinance)
		w := httptest.NewRecorder()

		handler.Semantic(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "query is required")
	})

	t.Run("rejects negative limit", func(t *testing.T) {
		handler := NewSearchHandler(new(MockSearchService))

		body, _ := json.Marshal(SearchRequest{Query: "invoice", Limit: -1})
		req := requestWithIdentity(http.MethodPost, "/search/semantic", body, domain.RoleFinance)
		w := httptest.NewRecorder()

		handler.Semantic(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid limit")
	})

	t.Run("missing identity", func(t *testing.T) {
		handler := NewSearchHandler(new(MockSearchService))

		req := httptest.NewRequest(http.MethodPost, "/search/semantic", nil)
		w := httptest.NewRecorder()

		handler.Semantic(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("service error propagates", func(t *testing.T) {
		search := new(MockSearchService)
		search.On("SemanticSearch", mock.Anything, mock.Anything).Return(nil, assert.AnError)

		handler := NewSearchHandler(search)

		body, _ := json.Marshal(SearchRequest{Query: "invoice"})
		req := requestWithIdentity(http.MethodPost, "/search/semantic", body, domain.RoleFinance)
		w := httptest.NewRecorder()

		handler.Semantic(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestSearchHandler_Keyword(t *testing.T) {
	t.Run("passes role and category", func(t *testing.T) {
		search := new(MockSearchService)
		results := []service.SearchResult{
			{Document: newTestDocument(), Score: 3, Snippet: "summary of doc"},
		}
		search.On("KeywordSearch", mock.Anything, service.KeywordSearchInput{
			Query:    "payment terms",
			Role:     domain.RoleLegal,
			Category: domain.CategoryContracts,
		}).Return(results, nil)

		handler := NewSearchHandler(search)

		body, _ := json.Marshal(SearchRequest{Query: "payment terms", Category: "Contracts"})
		req := requestWithIdentity(http.MethodPost, "/search/keyword", body, domain.RoleLegal)
		w := httptest.NewRecorder()

		handler.Keyword(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp SearchResponse
		decodeData(t, w, &resp)
		assert.Equal(t, 1, resp.Count)
		search.AssertExpectations(t)
	})

	t.Run("requires query", func(t *testing.T) {
		handler := NewSearchHandler(new(MockSearchService))

		body, _ := json.Marshal(SearchRequest{})
		req := requestWithIdentity(http.MethodPost, "/search/keyword", body, domain.RoleLegal)
		w := httptest.NewRecorder()

		handler.Keyword(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		handler := NewSearchHandler(new(MockSearchService))

		req := requestWithIdentity(http.MethodPost, "/search/keyword", []byte("{broken"), domain.RoleLegal)
		w := httptest.NewRecorder()

		handler.Keyword(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
