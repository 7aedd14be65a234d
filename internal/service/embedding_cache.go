package service

import (
	"context"
	"crypto/sha256"
	"log"
	"sync"

	"github.com/harborlabs/docvault/internal/domain"
)

type cacheEntry struct {
	hash      [sha256.Size]byte
	embedding []float32
}

// EmbeddingCache memoizes document embeddings keyed by document ID and
// a hash of the embedded text. Entries fill lazily on first access and
// are invalidated only on re-ingest, so search over a corpus never
// recomputes vectors for unchanged documents.
type EmbeddingCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	client  EmbeddingClient
}

// NewEmbeddingCache creates a new EmbeddingCache backed by the given client
func NewEmbeddingCache(client EmbeddingClient) *EmbeddingCache {
	return &EmbeddingCache{
		entries: make(map[string]cacheEntry),
		client:  client,
	}
}

// Get returns the embedding for the document. A stored vector of the
// right dimensionality is used as-is; otherwise the cache returns the
// memoized vector when the content hash still matches, computing and
// storing it on first access.
func (c *EmbeddingCache) Get(ctx context.Context, doc *domain.Document) ([]float32, error) {
	if len(doc.Embedding) == domain.EmbeddingDimensions {
		return doc.Embedding, nil
	}
	if len(doc.Embedding) != 0 {
		log.Printf("document %s: %v (got %d), recomputing", doc.ID, domain.ErrCorruptEmbedding, len(doc.Embedding))
	}

	hash := sha256.Sum256([]byte(EmbeddingText(doc.Title, doc.Content, doc.Summary)))

	c.mu.RLock()
	entry, ok := c.entries[doc.ID]
	c.mu.RUnlock()
	if ok && entry.hash == hash {
		return entry.embedding, nil
	}

	embedding, err := c.client.GenerateEmbedding(ctx, EmbeddingText(doc.Title, doc.Content, doc.Summary))
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[doc.ID] = cacheEntry{hash: hash, embedding: embedding}
	c.mu.Unlock()

	return embedding, nil
}

// Invalidate drops the cached embedding for the document ID
func (c *EmbeddingCache) Invalidate(docID string) {
	c.mu.Lock()
	delete(c.entries, docID)
	c.mu.Unlock()
}

// Len returns the number of cached entries
func (c *EmbeddingCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
