package analysis

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/harborlabs/docvault/internal/domain"
)

const (
	// maxTitleChars is the length at or above which the first content
	// line is rejected as a title in favor of the file name.
	maxTitleChars = 100
	// maxKeywords is the number of top-ranked terms kept as keywords.
	maxKeywords = 10
	// minKeywordChars is the minimum token length for a keyword
	// candidate.
	minKeywordChars = 4
)

// authorPatterns are tried in order; the first capture wins.
var authorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Author:\s*(.+)`),
	regexp.MustCompile(`(?i)By:\s*(.+)`),
	regexp.MustCompile(`(?i)Created by:\s*(.+)`),
	regexp.MustCompile(`([a-zA-Z]+\.[a-zA-Z]+@[a-zA-Z]+\.[a-zA-Z]+)`),
}

// unknownAuthor is the fallback when no author pattern matches
const unknownAuthor = "Unknown"

var stopWords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "have": {}, "will": {},
	"from": {}, "they": {}, "know": {}, "want": {}, "been": {},
	"good": {}, "much": {}, "some": {}, "time": {}, "very": {},
	"when": {}, "come": {}, "here": {}, "just": {}, "like": {},
	"long": {}, "make": {}, "many": {}, "over": {}, "such": {},
	"take": {}, "than": {}, "them": {}, "well": {}, "were": {},
}

// ExtractMetadata builds the structured metadata record for a document:
// heuristic title and author detection, ranked keywords and the entity
// lists. Malformed or empty text degrades to empty lists, the file name
// title fallback and an "Unknown" author.
func ExtractMetadata(content, fileName string) domain.DocumentMetadata {
	return domain.DocumentMetadata{
		Title:  ExtractTitle(content, fileName),
		Author: ExtractAuthor(content),
		Entities: domain.Entities{
			People:        ExtractPeople(content),
			Organizations: ExtractOrganizations(content),
			Amounts:       ExtractAmounts(content),
			Dates:         ExtractDates(content),
		},
		Keywords: ExtractKeywords(content),
	}
}

// ExtractTitle returns the first non-empty content line when it is
// shorter than 100 characters, otherwise the file name with its
// extension stripped.
func ExtractTitle(content, fileName string) string {
	fallback := strings.TrimSuffix(fileName, filepath.Ext(fileName))

	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if utf8.RuneCountInString(line) < maxTitleChars {
			return strings.TrimSpace(line)
		}
		return fallback
	}

	return fallback
}

// ExtractAuthor returns the first author pattern capture, or "Unknown"
func ExtractAuthor(content string) string {
	for _, pattern := range authorPatterns {
		if m := pattern.FindStringSubmatch(content); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return unknownAuthor
}

// ExtractKeywords returns the top ten terms of the whole-document
// frequency table after dropping stop words and tokens of three
// characters or fewer. Frequency ties keep first-seen order.
func ExtractKeywords(content string) []string {
	freq := WordFrequencies(content)

	candidates := make([]string, 0, freq.Len())
	for _, token := range freq.Tokens() {
		if utf8.RuneCountInString(token) < minKeywordChars {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		candidates = append(candidates, token)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return freq.Count(candidates[i]) > freq.Count(candidates[j])
	})

	if len(candidates) > maxKeywords {
		candidates = candidates[:maxKeywords]
	}
	return candidates
}
