package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/harborlabs/docvault/internal/domain"
	"github.com/harborlabs/docvault/internal/pagination"
)

// MockDocumentRepository is a mock implementation of PagingDocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Save(ctx context.Context, doc *domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListActive(ctx context.Context) ([]*domain.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) SoftDelete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	args := m.Called(ctx, id, embedding)
	return args.Error(0)
}

func (m *MockDocumentRepository) ListByCategoriesWithCursor(ctx context.Context, categories []domain.Category, cursor *pagination.Cursor, limit int) (*DocumentPageResult, error) {
	args := m.Called(ctx, categories, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DocumentPageResult), args.Error(1)
}

// MockEmbeddingClient is a mock implementation of EmbeddingClient
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockBlobStore is a mock implementation of BlobStore
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	args := m.Called(ctx, key, contentType, data)
	return args.Error(0)
}

// MockUUIDGenerator returns a fixed sequence of IDs
type MockUUIDGenerator struct {
	callCount int
	uuids     []string
}

func NewMockUUIDGenerator(uuids ...string) *MockUUIDGenerator {
	return &MockUUIDGenerator{uuids: uuids}
}

func (m *MockUUIDGenerator) NewString() string {
	if m.callCount < len(m.uuids) {
		id := m.uuids[m.callCount]
		m.callCount++
		return id
	}
	return "default-uuid"
}

var testEmbedding = make([]float32, domain.EmbeddingDimensions)

func fixedClock() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newTestIngestService(repo *MockDocumentRepository, client *MockEmbeddingClient) *IngestService {
	return NewIngestService(repo, client, NewEmbeddingCache(client)).
		WithUUIDGenerator(NewMockUUIDGenerator("doc-1")).
		WithClock(fixedClock)
}

func TestIngest_RunsFullPipeline(t *testing.T) {
	content := "Invoice #123 payment due to Acme Corp."
	repo := new(MockDocumentRepository)
	client := new(MockEmbeddingClient)

	// The embedding covers title, content and summary; for a short
	// single-line document all three collapse to the same text.
	expectedText := content + " " + content + " " + content
	client.On("GenerateEmbedding", mock.Anything, expectedText).Return(testEmbedding, nil)

	var saved *domain.Document
	repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Document")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.Document) }).
		Return(nil)

	svc := newTestIngestService(repo, client)

	doc, err := svc.Ingest(context.Background(), IngestInput{
		Content:  content,
		FileName: "invoice_123.txt",
		FileSize: int64(len(content)),
		FileType: "text/plain",
		Uploader: domain.Identity{Username: "alice", Role: domain.RoleFinance},
	})

	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Same(t, doc, saved)

	assert.Equal(t, "doc-1", doc.ID)
	assert.Equal(t, content, doc.Title)
	assert.Equal(t, domain.CategoryFinance, doc.Category)
	assert.Equal(t, domain.CategoryFinance, doc.Metadata.SuggestedCategory)
	assert.Equal(t, "Unknown", doc.Author)
	assert.Equal(t, content, doc.Summary)
	assert.Equal(t, "alice", doc.Uploader)
	assert.Equal(t, fixedClock(), doc.UploadDate)
	assert.Equal(t, testEmbedding, doc.Embedding)
	assert.True(t, doc.IsActive)
	assert.Contains(t, doc.Metadata.Entities.Organizations, "Acme Corp")

	repo.AssertExpectations(t)
	client.AssertExpectations(t)
}

func TestIngest_RequiresFileName(t *testing.T) {
	repo := new(MockDocumentRepository)
	client := new(MockEmbeddingClient)
	svc := newTestIngestService(repo, client)

	doc, err := svc.Ingest(context.Background(), IngestInput{
		Content:  "some content",
		Uploader: domain.Identity{Username: "alice", Role: domain.RoleAdmin},
	})

	require.Error(t, err)
	assert.Nil(t, doc)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "GenerateEmbedding", mock.Anything, mock.Anything)
}

func TestIngest_DetailsOverrideInferredFields(t *testing.T) {
	content := "Invoice #123 payment due to Acme Corp."
	repo := new(MockDocumentRepository)
	client := new(MockEmbeddingClient)

	// A title override changes the embedded text.
	expectedText := "Q2 Vendor Invoice " + content + " " + content
	client.On("GenerateEmbedding", mock.Anything, expectedText).Return(testEmbedding, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	svc := newTestIngestService(repo, client)

	doc, err := svc.Ingest(context.Background(), IngestInput{
		Content:  content,
		FileName: "invoice_123.txt",
		Uploader: domain.Identity{Username: "alice", Role: domain.RoleFinance},
		Details: &IngestDetails{
			Title:    "Q2 Vendor Invoice",
			Author:   "Jane Smith",
			Category: domain.CategoryInvoices,
			Date:     "2024-03-15",
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "Q2 Vendor Invoice", doc.Title)
	assert.Equal(t, "Q2 Vendor Invoice", doc.Metadata.Title)
	assert.Equal(t, "Jane Smith", doc.Author)
	assert.Equal(t, domain.CategoryInvoices, doc.Category)
	// The classifier's verdict survives the override.
	assert.Equal(t, domain.CategoryFinance, doc.Metadata.SuggestedCategory)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), doc.UploadDate)
	assert.Equal(t, "2024-03-15", doc.Metadata.Date)

	client.AssertExpectations(t)
}

func TestIngest_RejectsInvalidCategoryOverride(t *testing.T) {
	repo := new(MockDocumentRepository)
	client := new(MockEmbeddingClient)
	svc := newTestIngestService(repo, client)

	doc, err := svc.Ingest(context.Background(), IngestInput{
		Content:  "content to ingest here",
		FileName: "doc.txt",
		Uploader: domain.Identity{Username: "alice", Role: domain.RoleAdmin},
		Details:  &IngestDetails{Category: "Gossip"},
	})

	assert.Nil(t, doc)
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestIngest_RejectsMalformedDateOverride(t *testing.T) {
	repo := new(MockDocumentRepository)
	client := new(MockEmbeddingClient)
	svc := newTestIngestService(repo, client)

	doc, err := svc.Ingest(context.Background(), IngestInput{
		Content:  "content to ingest here",
		FileName: "doc.txt",
		Uploader: domain.Identity{Username: "alice", Role: domain.RoleAdmin},
		Details:  &IngestDetails{Date: "15/03/2024"},
	})

	assert.Nil(t, doc)
	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
}

func TestIngest_EmbeddingFailureAbortsIngest(t *testing.T) {
	repo := new(MockDocumentRepository)
	client := new(MockEmbeddingClient)
	client.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(nil, errors.New("model unavailable"))

	svc := newTestIngestService(repo, client)

	doc, err := svc.Ingest(context.Background(), IngestInput{
		Content:  "content to ingest here",
		FileName: "doc.txt",
		Uploader: domain.Identity{Username: "alice", Role: domain.RoleAdmin},
	})

	assert.Nil(t, doc)
	require.Error(t, err)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestIngest_PersistenceFailureReturnsDocumentForRetry(t *testing.T) {
	repo := new(MockDocumentRepository)
	client := new(MockEmbeddingClient)
	client.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(testEmbedding, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	svc := newTestIngestService(repo, client)

	doc, err := svc.Ingest(context.Background(), IngestInput{
		Content:  "content to ingest here",
		FileName: "doc.txt",
		Uploader: domain.Identity{Username: "alice", Role: domain.RoleAdmin},
	})

	// The pipeline output survives a failed save so the caller can
	// retry without recomputing.
	require.Error(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "doc-1", doc.ID)
	assert.Equal(t, testEmbedding, doc.Embedding)
}

func TestIngest_ArchivesRawBytes(t *testing.T) {
	repo := new(MockDocumentRepository)
	client := new(MockEmbeddingClient)
	blobs := new(MockBlobStore)

	client.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(testEmbedding, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	blobs.On("Put", mock.Anything, "documents/doc-1/doc.txt", "text/plain", []byte("content to ingest here")).Return(nil)

	svc := newTestIngestService(repo, client).WithBlobStore(blobs)

	_, err := svc.Ingest(context.Background(), IngestInput{
		Content:  "content to ingest here",
		FileName: "doc.txt",
		FileType: "text/plain",
		Uploader: domain.Identity{Username: "alice", Role: domain.RoleAdmin},
	})

	require.NoError(t, err)
	blobs.AssertExpectations(t)
}

func TestIngest_BlobStoreFailureIsNonFatal(t *testing.T) {
	repo := new(MockDocumentRepository)
	client := new(MockEmbeddingClient)
	blobs := new(MockBlobStore)

	client.On("GenerateEmbedding", mock.Anything, mock.Anything).Return(testEmbedding, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	blobs.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("bucket gone"))

	svc := newTestIngestService(repo, client).WithBlobStore(blobs)

	doc, err := svc.Ingest(context.Background(), IngestInput{
		Content:  "content to ingest here",
		FileName: "doc.txt",
		Uploader: domain.Identity{Username: "alice", Role: domain.RoleAdmin},
	})

	require.NoError(t, err)
	assert.NotNil(t, doc)
}

func TestBlobKey(t *testing.T) {
	doc := &domain.Document{ID: "abc-123", FileName: "report.pdf"}
	assert.Equal(t, "documents/abc-123/report.pdf", BlobKey(doc))
}
