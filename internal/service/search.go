package service

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/harborlabs/docvault/internal/analysis"
	"github.com/harborlabs/docvault/internal/domain"
	"github.com/harborlabs/docvault/internal/telemetry"
)

const (
	// similarityFloor is the hard minimum similarity below which (and at
	// which) semantic results are discarded. Fixed, not call-time tunable.
	similarityFloor = 0.1
	// defaultSearchLimit caps semantic results when no limit is given.
	defaultSearchLimit = 10

	// snippetWindow is the size of the extracted snippet window and
	// snippetLead how far before the first match it starts.
	snippetWindow = 200
	snippetLead   = 50
)

// SearchResult is a transient (document, score, snippet) triple. The
// document reference is shared with the collection, never copied or
// mutated.
type SearchResult struct {
	Document *domain.Document
	Score    float32
	Snippet  string
}

// SemanticSearchInput represents input for semantic search
type SemanticSearchInput struct {
	Query    string
	Role     domain.Role
	Category domain.Category // optional post-filter, "" for none
	Limit    int
}

// KeywordSearchInput represents input for keyword search
type KeywordSearchInput struct {
	Query    string
	Role     domain.Role
	Category domain.Category // optional post-filter, "" for none
}

// DocumentLister provides the active document collection searches run over
type DocumentLister interface {
	ListActive(ctx context.Context) ([]*domain.Document, error)
}

// SearchService exposes semantic and keyword retrieval over the
// role-visible slice of the document collection.
type SearchService struct {
	docs      DocumentLister
	embedding EmbeddingClient
	cache     *EmbeddingCache
	logs      SearchLogRepository
}

// NewSearchService creates a new SearchService instance
func NewSearchService(docs DocumentLister, embedding EmbeddingClient, cache *EmbeddingCache) *SearchService {
	return &SearchService{
		docs:      docs,
		embedding: embedding,
		cache:     cache,
	}
}

// WithSearchLog configures best-effort query logging
func (s *SearchService) WithSearchLog(logs SearchLogRepository) *SearchService {
	s.logs = logs
	return s
}

// visibleDocuments filters the collection down to active documents the
// role may see. It runs before scoring in both search modes and before
// every listing operation, so ranks are computed only over visible
// documents. Unknown roles fail closed.
func visibleDocuments(role domain.Role, docs []*domain.Document) []*domain.Document {
	visible := make([]*domain.Document, 0, len(docs))
	for _, doc := range docs {
		if !doc.IsActive {
			continue
		}
		if domain.CanSee(role, doc.Category) {
			visible = append(visible, doc)
		}
	}
	return visible
}

// SemanticSearch embeds the query and ranks visible documents by cosine
// similarity. Results at or below the similarity floor are discarded,
// ties keep visible-list order, and the optional category filter is
// applied after ranking as a UI refinement.
func (s *SearchService) SemanticSearch(ctx context.Context, input SemanticSearchInput) ([]SearchResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.SemanticSearch", telemetry.SpanAttributes{
		Role:      string(input.Role),
		Operation: "semantic_search",
	})
	defer span.End()

	start := time.Now()

	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	queryEmbedding, err := s.embedding.GenerateEmbedding(ctx, input.Query)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	all, err := s.docs.ListActive(ctx)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	visible := visibleDocuments(input.Role, all)

	words := queryTokens(input.Query)

	results := make([]SearchResult, 0, len(visible))
	for _, doc := range visible {
		embedding, err := s.cache.Get(ctx, doc)
		if err != nil {
			span.SetError(err)
			return nil, err
		}

		score := analysis.CosineSimilarity(queryEmbedding, embedding)
		if score <= similarityFloor {
			continue
		}

		results = append(results, SearchResult{
			Document: doc,
			Score:    score,
			Snippet:  contentSnippet(doc.Content, words),
		})
	}

	// Stable sort keeps visible-list order on equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	results = filterCategory(results, input.Category)
	if len(results) > limit {
		results = results[:limit]
	}

	s.recordSearch(ctx, SearchLogEntry{
		Query:       input.Query,
		Mode:        SearchModeSemantic,
		Role:        input.Role,
		Category:    input.Category,
		Limit:       limit,
		ResultCount: len(results),
		DurationMs:  int(time.Since(start).Milliseconds()),
	})

	return results, nil
}

// KeywordSearch scores visible documents by the total occurrence count
// of all query tokens across title, content, summary and keywords.
// Zero-score documents are excluded; there is no floor and no limit.
func (s *SearchService) KeywordSearch(ctx context.Context, input KeywordSearchInput) ([]SearchResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.KeywordSearch", telemetry.SpanAttributes{
		Role:      string(input.Role),
		Operation: "keyword_search",
	})
	defer span.End()

	start := time.Now()

	all, err := s.docs.ListActive(ctx)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	visible := visibleDocuments(input.Role, all)

	words := queryTokens(input.Query)

	results := make([]SearchResult, 0, len(visible))
	for _, doc := range visible {
		searchText := strings.ToLower(doc.Title + " " + doc.Content + " " + doc.Summary + " " + strings.Join(doc.Metadata.Keywords, " "))

		score := 0
		for _, word := range words {
			score += strings.Count(searchText, word)
		}
		if score == 0 {
			continue
		}

		results = append(results, SearchResult{
			Document: doc,
			Score:    float32(score),
			Snippet:  keywordSnippet(doc, searchText, words),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	results = filterCategory(results, input.Category)

	s.recordSearch(ctx, SearchLogEntry{
		Query:       input.Query,
		Mode:        SearchModeKeyword,
		Role:        input.Role,
		Category:    input.Category,
		ResultCount: len(results),
		DurationMs:  int(time.Since(start).Milliseconds()),
	})

	return results, nil
}

func filterCategory(results []SearchResult, category domain.Category) []SearchResult {
	if category == "" {
		return results
	}
	filtered := results[:0]
	for _, r := range results {
		if r.Document.Category == category {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// snippetBounds clamps a window start to the content and snaps both
// edges to rune boundaries. Clamping matters because match offsets are
// found in a lowercased copy, and ToLower can lengthen bytes, pushing
// the offset past the end of the original.
func snippetBounds(content string, start int) (int, int) {
	if start < 0 {
		start = 0
	}
	if start > len(content) {
		start = len(content)
	}
	for start > 0 && !utf8.RuneStart(content[start]) {
		start--
	}

	end := start + snippetWindow
	if end > len(content) {
		end = len(content)
	}
	for end < len(content) && !utf8.RuneStart(content[end]) {
		end++
	}
	return start, end
}

// contentSnippet extracts a 200-character window starting 50 characters
// before the first occurrence of the first query word found in the
// content. With no match the window starts at offset 0.
func contentSnippet(content string, words []string) string {
	lower := strings.ToLower(content)

	start := 0
	for _, word := range words {
		if idx := strings.Index(lower, word); idx != -1 {
			start = idx - snippetLead
			break
		}
	}

	start, end := snippetBounds(content, start)
	return content[start:end] + "..."
}

// keywordSnippet defaults to the document summary and upgrades to a
// content window around the first matching token when one occurs in the
// content itself.
func keywordSnippet(doc *domain.Document, searchText string, words []string) string {
	for _, word := range words {
		if !strings.Contains(searchText, word) {
			continue
		}
		idx := strings.Index(strings.ToLower(doc.Content), word)
		if idx == -1 {
			break
		}
		start, end := snippetBounds(doc.Content, idx-snippetLead)
		return doc.Content[start:end] + "..."
	}
	return doc.Summary
}

func (s *SearchService) recordSearch(ctx context.Context, entry SearchLogEntry) {
	if s.logs == nil {
		return
	}
	if _, err := s.logs.CreateSearchLog(ctx, entry); err != nil {
		log.Printf("failed to record search log: %v", err)
	}
}
