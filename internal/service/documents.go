package service

import (
	"context"
	"sort"

	"github.com/harborlabs/docvault/internal/domain"
	"github.com/harborlabs/docvault/internal/pagination"
	"github.com/harborlabs/docvault/internal/telemetry"
)

const defaultRecentLimit = 5

// DocumentPageResult is a page of documents with a continuation cursor
type DocumentPageResult struct {
	Items      []*domain.Document
	NextCursor string
	HasMore    bool
}

// PagingDocumentRepository extends DocumentRepository with cursor
// pagination over the categories visible to a role.
type PagingDocumentRepository interface {
	DocumentRepository
	ListByCategoriesWithCursor(ctx context.Context, categories []domain.Category, cursor *pagination.Cursor, limit int) (*DocumentPageResult, error)
}

// BlobURLSigner issues short-lived download links for archived file bytes
type BlobURLSigner interface {
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
}

// DocumentService handles listing, retrieval and statistics over the
// role-visible document collection.
type DocumentService struct {
	repo   PagingDocumentRepository
	signer BlobURLSigner
}

// NewDocumentService creates a new DocumentService instance
func NewDocumentService(repo PagingDocumentRepository) *DocumentService {
	return &DocumentService{repo: repo}
}

// WithBlobSigner configures an optional presigner for file downloads
func (s *DocumentService) WithBlobSigner(signer BlobURLSigner) *DocumentService {
	s.signer = signer
	return s
}

// GetByID retrieves a document the role is allowed to see. Inactive or
// invisible documents surface as not found rather than leaking their
// existence.
func (s *DocumentService) GetByID(ctx context.Context, id string, role domain.Role) (*domain.Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.GetByID", telemetry.SpanAttributes{
		DocumentID: id,
		Role:       string(role),
		Operation:  "get",
	})
	defer span.End()

	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.IsActive || !domain.CanSee(role, doc.Category) {
		return nil, domain.ErrDocumentNotFound
	}
	return doc, nil
}

// List returns a cursor-paginated page of documents visible to the role
func (s *DocumentService) List(ctx context.Context, role domain.Role, cursorStr string, limit int) (*DocumentPageResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.List", telemetry.SpanAttributes{
		Role:      string(role),
		Operation: "list",
	})
	defer span.End()

	categories := domain.VisibleCategories(role)
	if len(categories) == 0 {
		return &DocumentPageResult{Items: []*domain.Document{}}, nil
	}

	cursor, err := pagination.DecodeCursor(cursorStr)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}

	return s.repo.ListByCategoriesWithCursor(ctx, categories, cursor, limit)
}

// Recent returns the most recently uploaded visible documents, newest
// first, default limit five.
func (s *DocumentService) Recent(ctx context.Context, role domain.Role, limit int) ([]*domain.Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.Recent", telemetry.SpanAttributes{
		Role:      string(role),
		Operation: "recent",
	})
	defer span.End()

	if limit <= 0 {
		limit = defaultRecentLimit
	}

	all, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	visible := visibleDocuments(role, all)

	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].UploadDate.After(visible[j].UploadDate)
	})

	if len(visible) > limit {
		visible = visible[:limit]
	}
	return visible, nil
}

// CategoryStats counts visible documents per category
func (s *DocumentService) CategoryStats(ctx context.Context, role domain.Role) (map[domain.Category]int, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.CategoryStats", telemetry.SpanAttributes{
		Role:      string(role),
		Operation: "stats",
	})
	defer span.End()

	all, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	stats := make(map[domain.Category]int)
	for _, doc := range visibleDocuments(role, all) {
		stats[doc.Category]++
	}
	return stats, nil
}

// DownloadURL returns a presigned link to the archived file bytes for a
// document the role may see. Requires a configured blob signer.
func (s *DocumentService) DownloadURL(ctx context.Context, id string, role domain.Role) (string, error) {
	if s.signer == nil {
		return "", domain.NewDomainError(domain.ErrCodeValidation, "file downloads are not enabled")
	}

	doc, err := s.GetByID(ctx, id, role)
	if err != nil {
		return "", err
	}

	return s.signer.GenerateDownloadURL(ctx, BlobKey(doc))
}

// Delete soft-deletes a document. Only admins may delete.
func (s *DocumentService) Delete(ctx context.Context, id string, role domain.Role) error {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.Delete", telemetry.SpanAttributes{
		DocumentID: id,
		Role:       string(role),
		Operation:  "delete",
	})
	defer span.End()

	if role != domain.RoleAdmin {
		return domain.ErrForbidden
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, id)
}
