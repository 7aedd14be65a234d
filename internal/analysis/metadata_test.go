package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTitle(t *testing.T) {
	t.Run("first non-empty line", func(t *testing.T) {
		content := "\n\n  Q3 Budget Review  \nbody text follows"
		assert.Equal(t, "Q3 Budget Review", ExtractTitle(content, "report.txt"))
	})

	t.Run("long first line falls back to file name", func(t *testing.T) {
		content := strings.Repeat("a", 100) + "\nsecond line"
		assert.Equal(t, "report", ExtractTitle(content, "report.txt"))
	})

	t.Run("line just under the limit is kept", func(t *testing.T) {
		line := strings.Repeat("a", 99)
		assert.Equal(t, line, ExtractTitle(line, "report.txt"))
	})

	t.Run("empty content falls back to file name", func(t *testing.T) {
		assert.Equal(t, "meeting_notes", ExtractTitle("", "meeting_notes.pdf"))
		assert.Equal(t, "archive.tar", ExtractTitle("  \n \n", "archive.tar.gz"))
	})
}

func TestExtractAuthor(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"author prefix", "Title\nAuthor: Jane Smith\nbody", "Jane Smith"},
		{"by prefix", "Report\nBy: Bob Jones", "Bob Jones"},
		{"created by prefix", "Created by: Carol White", "Carol White"},
		{"case insensitive", "author: alice", "alice"},
		{"email fallback", "Contact jane.smith@acme.com with questions.", "jane.smith@acme.com"},
		{"no match", "An unattributed document.", "Unknown"},
		{"empty content", "", "Unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractAuthor(tc.content))
		})
	}
}

func TestExtractAuthorPrefixBeatsEmail(t *testing.T) {
	content := "Contact bob.jones@acme.com\nAuthor: Jane Smith"
	assert.Equal(t, "Jane Smith", ExtractAuthor(content))
}

func TestExtractKeywords(t *testing.T) {
	t.Run("ranks by frequency", func(t *testing.T) {
		content := "project project project budget budget review"
		assert.Equal(t, []string{"project", "budget", "review"}, ExtractKeywords(content))
	})

	t.Run("drops short tokens and stop words", func(t *testing.T) {
		content := "this that with have will the a of payroll payroll audit"
		assert.Equal(t, []string{"payroll", "audit"}, ExtractKeywords(content))
	})

	t.Run("caps at ten with first-seen tie order", func(t *testing.T) {
		words := []string{
			"alpha", "bravo", "charlie", "delta", "echofox",
			"foxtrot", "golfing", "hotelier", "indigo", "juliet",
			"kilogram", "limousine",
		}
		got := ExtractKeywords(strings.Join(words, " "))
		assert.Equal(t, words[:10], got)
	})

	t.Run("empty content", func(t *testing.T) {
		assert.Empty(t, ExtractKeywords(""))
	})
}

func TestExtractMetadata(t *testing.T) {
	content := "Invoice 2024-001\n" +
		"Author: Jane Smith\n" +
		"Acme Corp owes $12,500.00 payable by 03/15/2024.\n" +
		"Invoice invoice invoice payment payment processing."

	meta := ExtractMetadata(content, "invoice_2024_001.txt")

	assert.Equal(t, "Invoice 2024-001", meta.Title)
	assert.Equal(t, "Jane Smith", meta.Author)
	assert.Contains(t, meta.Entities.People, "Jane Smith")
	assert.Contains(t, meta.Entities.Organizations, "Acme Corp")
	assert.Contains(t, meta.Entities.Amounts, "$12,500.00")
	assert.Contains(t, meta.Entities.Dates, "03/15/2024")
	require.NotEmpty(t, meta.Keywords)
	assert.Equal(t, "invoice", meta.Keywords[0])
}

func TestExtractMetadataEmptyContent(t *testing.T) {
	meta := ExtractMetadata("", "untitled.txt")

	assert.Equal(t, "untitled", meta.Title)
	assert.Equal(t, "Unknown", meta.Author)
	assert.Empty(t, meta.Entities.People)
	assert.Empty(t, meta.Entities.Organizations)
	assert.Empty(t, meta.Entities.Amounts)
	assert.Empty(t, meta.Entities.Dates)
	assert.Empty(t, meta.Keywords)
}
