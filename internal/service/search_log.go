package service

import (
	"context"

	"github.com/harborlabs/docvault/internal/domain"
)

// SearchMode identifies which retrieval path served a query
type SearchMode string

const (
	SearchModeSemantic SearchMode = "semantic"
	SearchModeKeyword  SearchMode = "keyword"
)

// SearchLogEntry captures a search request and its outcome
type SearchLogEntry struct {
	Query       string
	Mode        SearchMode
	Role        domain.Role
	Category    domain.Category
	Limit       int
	ResultCount int
	DurationMs  int
}

// SearchLogRepository persists search logs
type SearchLogRepository interface {
	CreateSearchLog(ctx context.Context, entry SearchLogEntry) (string, error)
}
