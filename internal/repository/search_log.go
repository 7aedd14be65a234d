package repository

import (
	"context"

	"github.com/harborlabs/docvault/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SearchLogRepository stores search logs for evaluating retrieval quality.
type SearchLogRepository struct {
	db dbtx
}

func NewSearchLogRepository(pool *pgxpool.Pool) *SearchLogRepository {
	return &SearchLogRepository{db: pool}
}

func (r *SearchLogRepository) CreateSearchLog(ctx context.Context, entry service.SearchLogEntry) (string, error) {
	var id string
	err := r.db.QueryRow(ctx,
		`INSERT INTO search_logs (query, mode, role, category, result_limit, result_count, duration_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		entry.Query,
		string(entry.Mode),
		string(entry.Role),
		nullableString(string(entry.Category)),
		entry.Limit,
		entry.ResultCount,
		entry.DurationMs,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}
