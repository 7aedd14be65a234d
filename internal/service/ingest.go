package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harborlabs/docvault/internal/analysis"
	"github.com/harborlabs/docvault/internal/domain"
	"github.com/harborlabs/docvault/internal/telemetry"
)

// EmbeddingClient defines the interface for generating embeddings.
// The deterministic analysis.Embedder and the OpenAI adapter both
// implement it.
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// DocumentRepository defines the repository interface for document persistence
type DocumentRepository interface {
	Save(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListActive(ctx context.Context) ([]*domain.Document, error)
	SoftDelete(ctx context.Context, id string) error
	UpdateEmbedding(ctx context.Context, id string, embedding []float32) error
}

// BlobStore persists raw document bytes. Optional; ingest proceeds
// without it.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// IngestDetails carries optional uploader-supplied fields that override
// the inferred ones.
type IngestDetails struct {
	Title    string
	Author   string
	Category domain.Category
	Date     string // YYYY-MM-DD
}

// IngestInput represents input for document ingestion
type IngestInput struct {
	Content  string
	FileName string
	FileSize int64
	FileType string
	Uploader domain.Identity
	Details  *IngestDetails
}

// IngestService runs the intelligence pipeline over incoming documents:
// classification, metadata extraction, summarization and embedding
// generation, then hands the assembled record to the persistence
// collaborator.
type IngestService struct {
	repo      DocumentRepository
	embedding EmbeddingClient
	cache     *EmbeddingCache
	blobs     BlobStore
	uuidGen   UUIDGenerator
	now       func() time.Time
}

// NewIngestService creates a new IngestService instance
func NewIngestService(repo DocumentRepository, embedding EmbeddingClient, cache *EmbeddingCache) *IngestService {
	return &IngestService{
		repo:      repo,
		embedding: embedding,
		cache:     cache,
		uuidGen:   &DefaultUUIDGenerator{},
		now:       time.Now,
	}
}

// WithBlobStore configures an optional raw-byte store for ingested files
func (s *IngestService) WithBlobStore(blobs BlobStore) *IngestService {
	s.blobs = blobs
	return s
}

// WithUUIDGenerator sets a custom UUID generator (for testing)
func (s *IngestService) WithUUIDGenerator(gen UUIDGenerator) *IngestService {
	s.uuidGen = gen
	return s
}

// WithClock sets a custom clock (for testing)
func (s *IngestService) WithClock(now func() time.Time) *IngestService {
	s.now = now
	return s
}

// EmbeddingText returns the text a document is embedded over: the
// resolved title, the full content and the summary joined by spaces.
func EmbeddingText(title, content, summary string) string {
	return title + " " + content + " " + summary
}

// BlobKey returns the object key a document's raw bytes are archived under
func BlobKey(doc *domain.Document) string {
	return "documents/" + doc.ID + "/" + doc.FileName
}

// Ingest runs the full pipeline and persists the resulting document.
// The classifier, summarizer and metadata extractor always run;
// uploader-supplied details override the inferred title, author,
// category and date while the classifier's verdict stays retrievable in
// the metadata. When persistence fails the computed Document is still
// returned alongside the error so the caller can retry the save without
// re-running classification and embedding.
func (s *IngestService) Ingest(ctx context.Context, input IngestInput) (*domain.Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "IngestService.Ingest", telemetry.SpanAttributes{
		Role:      string(input.Uploader.Role),
		Operation: "ingest",
	})
	defer span.End()

	if input.FileName == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "file name is required")
	}

	metadata := analysis.ExtractMetadata(input.Content, input.FileName)
	suggested := analysis.Classify(input.Content, input.FileName)
	summary := analysis.Summarize(input.Content)

	metadata.SuggestedCategory = suggested

	title := metadata.Title
	author := metadata.Author
	category := suggested
	uploadDate := s.now().UTC()

	if d := input.Details; d != nil {
		if d.Title != "" {
			title = d.Title
			metadata.Title = d.Title
		}
		if d.Author != "" {
			author = d.Author
			metadata.Author = d.Author
		}
		if d.Category != "" {
			if !domain.IsValidCategory(d.Category) {
				return nil, domain.ErrInvalidCategory
			}
			category = d.Category
		}
		if d.Date != "" {
			parsed, err := time.Parse("2006-01-02", d.Date)
			if err != nil {
				return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid date, expected YYYY-MM-DD", err)
			}
			uploadDate = parsed
			metadata.Date = d.Date
		}
	}

	// The embedding covers title + content + summary, so a title
	// override changes the vector.
	embedding, err := s.embedding.GenerateEmbedding(ctx, EmbeddingText(title, input.Content, summary))
	if err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to generate embedding", err)
	}

	doc := domain.NewDocument(
		s.uuidGen.NewString(),
		title,
		author,
		category,
		uploadDate,
		input.Uploader.Username,
		input.FileName,
		input.FileSize,
		input.FileType,
		input.Content,
		summary,
		metadata,
		embedding,
		s.now().UTC(),
	)

	if err := domain.ValidateDocument(doc); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid document", err)
	}

	if s.blobs != nil {
		if err := s.blobs.Put(ctx, BlobKey(doc), doc.FileType, []byte(doc.Content)); err != nil {
			// Blob storage is best-effort; the content lives on the record.
			log.Printf("blob store put failed for document %s: %v", doc.ID, err)
		}
	}

	if s.cache != nil {
		s.cache.Invalidate(doc.ID)
	}

	if err := s.repo.Save(ctx, doc); err != nil {
		span.SetError(err)
		// The pipeline output is not discarded: the caller gets the
		// computed document and may retry persistence.
		return doc, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to persist document", err)
	}

	return doc, nil
}

// helper shared by search snippeting and keyword scoring
func queryTokens(query string) []string {
	return strings.Fields(strings.ToLower(query))
}
