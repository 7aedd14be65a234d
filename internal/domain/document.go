package domain

import (
	"fmt"
	"time"
)

// Category represents a document category from the fixed taxonomy
type Category string

const (
	CategoryFinance          Category = "Finance"
	CategoryHR               Category = "HR"
	CategoryLegal            Category = "Legal"
	CategoryContracts        Category = "Contracts"
	CategoryTechnicalReports Category = "Technical Reports"
	CategoryInvoices         Category = "Invoices"
	CategoryOther            Category = "Other"
)

// Categories lists every member of the taxonomy
var Categories = []Category{
	CategoryFinance,
	CategoryHR,
	CategoryLegal,
	CategoryContracts,
	CategoryTechnicalReports,
	CategoryInvoices,
	CategoryOther,
}

// EmbeddingDimensions is the fixed dimensionality of document embeddings
const EmbeddingDimensions = 384

// Entities holds the named entities extracted from document content.
// Each list is deduplicated preserving first-seen order and capped at
// ten distinct entries.
type Entities struct {
	People        []string `json:"people"`
	Organizations []string `json:"organizations"`
	Amounts       []string `json:"amounts"`
	Dates         []string `json:"dates"`
}

// DocumentMetadata represents the structured metadata derived from a document
type DocumentMetadata struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Date     string   `json:"date,omitempty"`
	Entities Entities `json:"entities"`
	Keywords []string `json:"keywords"`
	// SuggestedCategory is the classifier's verdict. It matches the
	// document category unless the uploader overrode the category, in
	// which case both remain retrievable.
	SuggestedCategory Category `json:"suggested_category,omitempty"`
}

// Document represents a document record in the repository.
// Documents are immutable once created; re-ingestion produces a new record.
type Document struct {
	ID         string
	Title      string
	Author     string
	Category   Category
	UploadDate time.Time
	Uploader   string
	FileName   string
	FileSize   int64
	FileType   string
	Content    string
	Summary    string
	Metadata   DocumentMetadata
	Embedding  []float32
	IsActive   bool
	CreatedAt  time.Time
}

// NewDocument creates a new Document instance
func NewDocument(
	id, title, author string,
	category Category,
	uploadDate time.Time,
	uploader, fileName string,
	fileSize int64,
	fileType, content, summary string,
	metadata DocumentMetadata,
	embedding []float32,
	createdAt time.Time,
) *Document {
	return &Document{
		ID:         id,
		Title:      title,
		Author:     author,
		Category:   category,
		UploadDate: uploadDate,
		Uploader:   uploader,
		FileName:   fileName,
		FileSize:   fileSize,
		FileType:   fileType,
		Content:    content,
		Summary:    summary,
		Metadata:   metadata,
		Embedding:  embedding,
		IsActive:   true,
		CreatedAt:  createdAt,
	}
}

// ValidateDocument validates a Document instance
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}

	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	if d.Title == "" {
		return fmt.Errorf("document Title is required")
	}

	if d.FileName == "" {
		return fmt.Errorf("document FileName is required")
	}

	if !IsValidCategory(d.Category) {
		return fmt.Errorf("document Category is invalid: %s", d.Category)
	}

	if len(d.Embedding) != 0 && len(d.Embedding) != EmbeddingDimensions {
		return fmt.Errorf("document Embedding must have %d dimensions, got %d", EmbeddingDimensions, len(d.Embedding))
	}

	return nil
}

// IsValidCategory checks if a Category is a member of the taxonomy
func IsValidCategory(c Category) bool {
	switch c {
	case CategoryFinance, CategoryHR, CategoryLegal, CategoryContracts,
		CategoryTechnicalReports, CategoryInvoices, CategoryOther:
		return true
	}
	return false
}
