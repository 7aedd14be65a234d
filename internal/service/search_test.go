package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/harborlabs/docvault/internal/domain"
)

// MockSearchLogRepository is a mock implementation of SearchLogRepository
type MockSearchLogRepository struct {
	mock.Mock
}

func (m *MockSearchLogRepository) CreateSearchLog(ctx context.Context, entry SearchLogEntry) (string, error) {
	args := m.Called(ctx, entry)
	return args.String(0), args.Error(1)
}

// axisVector returns a unit vector along the given embedding axis
func axisVector(axis int) []float32 {
	vec := make([]float32, domain.EmbeddingDimensions)
	vec[axis] = 1
	return vec
}

// blendVector returns the normalized sum of two axis unit vectors
func blendVector(a, b int) []float32 {
	vec := make([]float32, domain.EmbeddingDimensions)
	vec[a] = float32(1 / math.Sqrt2)
	vec[b] = float32(1 / math.Sqrt2)
	return vec
}

func searchDoc(id string, category domain.Category, content string, embedding []float32) *domain.Document {
	return &domain.Document{
		ID:         id,
		Title:      "Document " + id,
		Category:   category,
		UploadDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		FileName:   id + ".txt",
		Content:    content,
		Summary:    "summary of " + id,
		Embedding:  embedding,
		IsActive:   true,
	}
}

func newTestSearchService(client EmbeddingClient, docs ...*domain.Document) (*SearchService, *MockDocumentRepository) {
	repo := new(MockDocumentRepository)
	repo.On("ListActive", mock.Anything).Return(docs, nil)
	return NewSearchService(repo, client, NewEmbeddingCache(client)), repo
}

func TestSemanticSearch_RanksBySimilarity(t *testing.T) {
	client := new(MockEmbeddingClient)
	client.On("GenerateEmbedding", mock.Anything, "quarterly budget").Return(axisVector(0), nil)

	docA := searchDoc("a", domain.CategoryFinance, "exact match", axisVector(0))
	docB := searchDoc("b", domain.CategoryFinance, "partial match", blendVector(0, 1))
	docC := searchDoc("c", domain.CategoryFinance, "unrelated", axisVector(1))

	svc, _ := newTestSearchService(client, docC, docB, docA)

	results, err := svc.SemanticSearch(context.Background(), SemanticSearchInput{
		Query: "quarterly budget",
		Role:  domain.RoleAdmin,
	})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Document.ID)
	assert.Equal(t, "b", results[1].Document.ID)
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-6)
	assert.InDelta(t, 1/math.Sqrt2, float64(results[1].Score), 1e-6)
}

func TestSemanticSearch_DiscardsScoresAtOrBelowFloor(t *testing.T) {
	client := new(MockEmbeddingClient)
	client.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(axisVector(0), nil)

	// Orthogonal embedding scores zero, which sits below the floor.
	doc := searchDoc("a", domain.CategoryFinance, "unrelated", axisVector(5))

	svc, _ := newTestSearchService(client, doc)

	results, err := svc.SemanticSearch(context.Background(), SemanticSearchInput{
		Query: "anything",
		Role:  domain.RoleAdmin,
	})

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSemanticSearch_DefaultLimit(t *testing.T) {
	client := new(MockEmbeddingClient)
	client.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(axisVector(0), nil)

	docs := make([]*domain.Document, 0, 12)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		docs = append(docs, searchDoc(id, domain.CategoryFinance, "matching content", axisVector(0)))
	}

	svc, _ := newTestSearchService(client, docs...)

	results, err := svc.SemanticSearch(context.Background(), SemanticSearchInput{
		Query: "anything",
		Role:  domain.RoleAdmin,
	})

	require.NoError(t, err)
	assert.Len(t, results, 10)
	// Equal scores keep collection order.
	assert.Equal(t, "a", results[0].Document.ID)
	assert.Equal(t, "j", results[9].Document.ID)

	limited, err := svc.SemanticSearch(context.Background(), SemanticSearchInput{
		Query: "anything",
		Role:  domain.RoleAdmin,
		Limit: 3,
	})
	require.NoError(t, err)
	assert.Len(t, limited, 3)
}

func TestSemanticSearch_RoleVisibility(t *testing.T) {
	client := new(MockEmbeddingClient)
	client.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(axisVector(0), nil)

	finance := searchDoc("fin", domain.CategoryFinance, "finance doc", axisVector(0))
	hr := searchDoc("hr", domain.CategoryHR, "hr doc", axisVector(0))
	inactive := searchDoc("gone", domain.CategoryFinance, "deleted doc", axisVector(0))
	inactive.IsActive = false

	svc, _ := newTestSearchService(client, finance, hr, inactive)

	t.Run("admin sees active documents of all categories", func(t *testing.T) {
		results, err := svc.SemanticSearch(context.Background(), SemanticSearchInput{Query: "q", Role: domain.RoleAdmin})
		require.NoError(t, err)
		require.Len(t, results, 2)
	})

	t.Run("hr sees only hr documents", func(t *testing.T) {
		results, err := svc.SemanticSearch(context.Background(), SemanticSearchInput{Query: "q", Role: domain.RoleHR})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "hr", results[0].Document.ID)
	})

	t.Run("unknown role sees nothing", func(t *testing.T) {
		results, err := svc.SemanticSearch(context.Background(), SemanticSearchInput{Query: "q", Role: "intern"})
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestSemanticSearch_CategoryFilterAppliesAfterRanking(t *testing.T) {
	client := new(MockEmbeddingClient)
	client.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(axisVector(0), nil)

	top := searchDoc("top", domain.CategoryFinance, "best match", axisVector(0))
	second := searchDoc("second", domain.CategoryInvoices, "partial match", blendVector(0, 1))

	svc, _ := newTestSearchService(client, top, second)

	// The category refinement runs after ranking and before the limit,
	// so a limit of one still reaches the second-ranked document.
	results, err := svc.SemanticSearch(context.Background(), SemanticSearchInput{
		Query:    "q",
		Role:     domain.RoleAdmin,
		Category: domain.CategoryInvoices,
		Limit:    1,
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "second", results[0].Document.ID)
}

func TestSemanticSearch_SnippetWindow(t *testing.T) {
	client := new(MockEmbeddingClient)
	client.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(axisVector(0), nil)

	content := strings.Repeat("x", 60) + " budget " + strings.Repeat("y", 300)
	doc := searchDoc("a", domain.CategoryFinance, content, axisVector(0))

	svc, _ := newTestSearchService(client, doc)

	results, err := svc.SemanticSearch(context.Background(), SemanticSearchInput{
		Query: "budget",
		Role:  domain.RoleAdmin,
	})

	require.NoError(t, err)
	require.Len(t, results, 1)

	// The window starts fifty characters before the first match and
	// spans two hundred characters.
	idx := strings.Index(content, "budget")
	expected := content[idx-50:idx-50+200] + "..."
	assert.Equal(t, expected, results[0].Snippet)
}

func TestSemanticSearch_EmbeddingErrorPropagates(t *testing.T) {
	client := new(MockEmbeddingClient)
	client.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(nil, errors.New("model down"))

	svc, _ := newTestSearchService(client)

	results, err := svc.SemanticSearch(context.Background(), SemanticSearchInput{Query: "q", Role: domain.RoleAdmin})
	assert.Error(t, err)
	assert.Nil(t, results)
}

func TestSemanticSearch_ListErrorPropagates(t *testing.T) {
	client := new(MockEmbeddingClient)
	client.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(axisVector(0), nil)

	repo := new(MockDocumentRepository)
	repo.On("ListActive", mock.Anything).Return(nil, errors.New("db down"))
	svc := NewSearchService(repo, client, NewEmbeddingCache(client))

	results, err := svc.SemanticSearch(context.Background(), SemanticSearchInput{Query: "q", Role: domain.RoleAdmin})
	assert.Error(t, err)
	assert.Nil(t, results)
}

func TestSemanticSearch_RecordsSearchLog(t *testing.T) {
	client := new(MockEmbeddingClient)
	client.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(axisVector(0), nil)

	doc := searchDoc("a", domain.CategoryFinance, "match", axisVector(0))
	svc, _ := newTestSearchService(client, doc)

	logs := new(MockSearchLogRepository)
	logs.On("CreateSearchLog", mock.Anything, mock.MatchedBy(func(entry SearchLogEntry) bool {
		return entry.Query == "budget report" &&
			entry.Mode == SearchModeSemantic &&
			entry.Role == domain.RoleFinance &&
			entry.Limit == 10 &&
			entry.ResultCount == 1
	})).Return("log-1", nil)

	svc.WithSearchLog(logs)

	_, err := svc.SemanticSearch(context.Background(), SemanticSearchInput{Query: "budget report", Role: domain.RoleFinance})
	require.NoError(t, err)
	logs.AssertExpectations(t)
}

func TestSemanticSearch_LogFailureIsNonFatal(t *testing.T) {
	client := new(MockEmbeddingClient)
	client.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(axisVector(0), nil)

	doc := searchDoc("a", domain.CategoryFinance, "match", axisVector(0))
	svc, _ := newTestSearchService(client, doc)

	logs := new(MockSearchLogRepository)
	logs.On("CreateSearchLog", mock.Anything, mock.Anything).Return("", errors.New("logs table gone"))
	svc.WithSearchLog(logs)

	results, err := svc.SemanticSearch(context.Background(), SemanticSearchInput{Query: "q", Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestKeywordSearch_ScoresByOccurrenceCount(t *testing.T) {
	heavy := searchDoc("heavy", domain.CategoryFinance, "budget budget budget", nil)
	light := searchDoc("light", domain.CategoryFinance, "one budget mention", nil)
	silent := searchDoc("silent", domain.CategoryFinance, "nothing relevant", nil)

	svc, _ := newTestSearchService(new(MockEmbeddingClient), light, heavy, silent)

	results, err := svc.KeywordSearch(context.Background(), KeywordSearchInput{
		Query: "budget",
		Role:  domain.RoleAdmin,
	})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "heavy", results[0].Document.ID)
	assert.Equal(t, float32(3), results[0].Score)
	assert.Equal(t, "light", results[1].Document.ID)
	assert.Equal(t, float32(1), results[1].Score)
}

func TestKeywordSearch_SumsAcrossFieldsAndTokens(t *testing.T) {
	doc := searchDoc("a", domain.CategoryFinance, "the payment is late", nil)
	doc.Title = "Payment schedule"
	doc.Summary = "payment terms overview"
	doc.Metadata.Keywords = []string{"payment", "terms"}

	svc, _ := newTestSearchService(new(MockEmbeddingClient), doc)

	results, err := svc.KeywordSearch(context.Background(), KeywordSearchInput{
		Query: "payment terms",
		Role:  domain.RoleAdmin,
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	// "payment" occurs four times and "terms" twice across title,
	// content, summary and keywords.
	assert.Equal(t, float32(6), results[0].Score)
}

func TestKeywordSearch_NoLimit(t *testing.T) {
	docs := make([]*domain.Document, 0, 15)
	for i := 0; i < 15; i++ {
		docs = append(docs, searchDoc(string(rune('a'+i)), domain.CategoryFinance, "budget item", nil))
	}

	svc, _ := newTestSearchService(new(MockEmbeddingClient), docs...)

	results, err := svc.KeywordSearch(context.Background(), KeywordSearchInput{
		Query: "budget",
		Role:  domain.RoleAdmin,
	})

	require.NoError(t, err)
	assert.Len(t, results, 15)
}

func TestKeywordSearch_RoleVisibility(t *testing.T) {
	finance := searchDoc("fin", domain.CategoryFinance, "shared keyword", nil)
	legal := searchDoc("leg", domain.CategoryLegal, "shared keyword", nil)

	svc, _ := newTestSearchService(new(MockEmbeddingClient), finance, legal)

	results, err := svc.KeywordSearch(context.Background(), KeywordSearchInput{
		Query: "keyword",
		Role:  domain.RoleLegal,
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "leg", results[0].Document.ID)
}

func TestKeywordSearch_CategoryFilter(t *testing.T) {
	finance := searchDoc("fin", domain.CategoryFinance, "shared keyword", nil)
	invoices := searchDoc("inv", domain.CategoryInvoices, "shared keyword", nil)

	svc, _ := newTestSearchService(new(MockEmbeddingClient), finance, invoices)

	results, err := svc.KeywordSearch(context.Background(), KeywordSearchInput{
		Query:    "keyword",
		Role:     domain.RoleAdmin,
		Category: domain.CategoryInvoices,
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "inv", results[0].Document.ID)
}

func TestKeywordSearch_SnippetFallsBackToSummary(t *testing.T) {
	// The match lives in the summary, not the content, so the snippet
	// is the summary itself.
	doc := searchDoc("a", domain.CategoryFinance, "body text without the term", nil)
	doc.Summary = "overview of invoicing policy"

	svc, _ := newTestSearchService(new(MockEmbeddingClient), doc)

	results, err := svc.KeywordSearch(context.Background(), KeywordSearchInput{
		Query: "invoicing",
		Role:  domain.RoleAdmin,
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "overview of invoicing policy", results[0].Snippet)
}

func TestKeywordSearch_RecordsSearchLog(t *testing.T) {
	doc := searchDoc("a", domain.CategoryFinance, "budget line", nil)
	svc, _ := newTestSearchService(new(MockEmbeddingClient), doc)

	logs := new(MockSearchLogRepository)
	logs.On("CreateSearchLog", mock.Anything, mock.MatchedBy(func(entry SearchLogEntry) bool {
		return entry.Mode == SearchModeKeyword && entry.ResultCount == 1 && entry.Limit == 0
	})).Return("log-1", nil)
	svc.WithSearchLog(logs)

	_, err := svc.KeywordSearch(context.Background(), KeywordSearchInput{Query: "budget", Role: domain.RoleAdmin})
	require.NoError(t, err)
	logs.AssertExpectations(t)
}

func TestContentSnippet_LowercaseLengthensBytes(t *testing.T) {
	// U+023A lowercases to U+2C65, growing from 2 to 3 bytes, so the
	// match offset found in the lowered copy can point past the end of
	// the original content.
	content := strings.Repeat("Ⱥ", 300) + " zebra"

	snippet := contentSnippet(content, []string{"zebra"})

	assert.True(t, strings.HasSuffix(snippet, "..."))
	assert.True(t, utf8.ValidString(snippet))
}

func TestContentSnippet_SnapsToRuneBoundaries(t *testing.T) {
	content := strings.Repeat("€", 100) + "budget review follows"

	snippet := contentSnippet(content, []string{"budget"})

	assert.True(t, utf8.ValidString(snippet))
	assert.Contains(t, snippet, "budget")
}

func TestKeywordSnippet_LowercaseLengthensBytes(t *testing.T) {
	doc := searchDoc("x", domain.CategoryOther, strings.Repeat("Ⱥ", 300)+" zebra", nil)
	searchText := strings.ToLower(doc.Title + " " + doc.Content + " " + doc.Summary)

	snippet := keywordSnippet(doc, searchText, []string{"zebra"})

	assert.True(t, utf8.ValidString(snippet))
}

func TestSemanticSearch_SurvivesLengtheningContent(t *testing.T) {
	client := new(MockEmbeddingClient)
	client.On("GenerateEmbedding", mock.Anything, "zebra").Return(axisVector(0), nil)

	doc := searchDoc("a", domain.CategoryOther, strings.Repeat("Ⱥ", 300)+" zebra", axisVector(0))
	svc, _ := newTestSearchService(client, doc)

	results, err := svc.SemanticSearch(context.Background(), SemanticSearchInput{
		Query: "zebra",
		Role:  domain.RoleAdmin,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, utf8.ValidString(results[0].Snippet))
}
