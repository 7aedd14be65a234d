package jobs

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/harborlabs/docvault/internal/domain"
	"github.com/harborlabs/docvault/internal/service"
)

// BackfillRepository defines the interface for finding and repairing
// documents whose stored embedding is missing
type BackfillRepository interface {
	ListMissingEmbeddings(ctx context.Context, limit int) ([]*domain.Document, error)
	UpdateEmbedding(ctx context.Context, id string, embedding []float32) error
}

// EmbeddingBackfiller recomputes embeddings for documents that were saved
// without one, for example after a failed ingest retry or a schema import.
type EmbeddingBackfiller struct {
	repo        BackfillRepository
	client      service.EmbeddingClient
	batchSize   int
	concurrency int
}

// NewEmbeddingBackfiller creates a new EmbeddingBackfiller instance
func NewEmbeddingBackfiller(repo BackfillRepository, client service.EmbeddingClient, batchSize, concurrency int) *EmbeddingBackfiller {
	if batchSize <= 0 {
		batchSize = 50
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &EmbeddingBackfiller{
		repo:        repo,
		client:      client,
		batchSize:   batchSize,
		concurrency: concurrency,
	}
}

// ProcessJobs implements the JobProcessor interface
func (b *EmbeddingBackfiller) ProcessJobs(ctx context.Context) error {
	docs, err := b.repo.ListMissingEmbeddings(ctx, b.batchSize)
	if err != nil {
		return fmt.Errorf("failed to list documents missing embeddings: %w", err)
	}

	if len(docs) == 0 {
		return nil
	}

	log.Printf("Backfilling embeddings for %d documents", len(docs))

	pool, err := ants.NewPool(b.concurrency)
	if err != nil {
		return fmt.Errorf("failed to create backfill pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, doc := range docs {
		doc := doc
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := b.backfill(ctx, doc); err != nil {
				log.Printf("Error backfilling embedding for document %s: %v", doc.ID, err)
			}
		})
		if submitErr != nil {
			wg.Done()
			log.Printf("Error submitting backfill for document %s: %v", doc.ID, submitErr)
		}
	}
	wg.Wait()

	return nil
}

func (b *EmbeddingBackfiller) backfill(ctx context.Context, doc *domain.Document) error {
	text := service.EmbeddingText(doc.Title, doc.Content, doc.Summary)

	embedding, err := b.client.GenerateEmbedding(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to generate embedding: %w", err)
	}

	if err := b.repo.UpdateEmbedding(ctx, doc.ID, embedding); err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}

	return nil
}
