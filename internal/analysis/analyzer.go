// Package analysis implements the deterministic content-intelligence
// heuristics: word statistics, entity extraction, classification,
// extractive summarization and pseudo-embeddings. Everything here is a
// pure function of its input text so results are reproducible and the
// whole package can be swapped for a model-backed service behind the
// same interfaces.
package analysis

import (
	"regexp"
	"strings"
)

// entityListCap bounds every extracted entity list to the first ten
// distinct matches.
const entityListCap = 10

var nonWordChars = regexp.MustCompile(`[^\w\s]`)

// Entity pattern families. Each family is an ordered list of independent
// matchers so new entity types can be added without touching existing ones.
var (
	peoplePatterns = []*regexp.Regexp{
		// Two consecutive title-case words
		regexp.MustCompile(`\b[A-Z][a-z]+ [A-Z][a-z]+\b`),
	}

	organizationPatterns = []*regexp.Regexp{
		// Capitalized word followed by a legal suffix
		regexp.MustCompile(`\b[A-Z][a-z]+ (?:Corp|Corporation|Inc|LLC|Ltd|Company|Co\.)\b`),
		// All-caps acronym followed by a capitalized word
		regexp.MustCompile(`\b[A-Z][A-Z]+ [A-Z][a-z]+\b`),
	}

	amountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\$[\d,]+(?:\.\d{2})?|\d+(?:,\d{3})*(?:\.\d{2})?\s*(?:USD|dollars?)`),
	}

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`),
		regexp.MustCompile(`\d{1,2}-\d{1,2}-\d{4}`),
		regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}\b`),
	}
)

// FrequencyTable holds case-insensitive token counts over a text.
// First-seen token order is preserved so callers can break frequency
// ties deterministically.
type FrequencyTable struct {
	counts map[string]int
	order  []string
}

// Count returns the number of occurrences of the given token
func (t *FrequencyTable) Count(token string) int {
	return t.counts[token]
}

// Tokens returns the distinct tokens in first-seen order
func (t *FrequencyTable) Tokens() []string {
	return t.order
}

// Len returns the number of distinct tokens
func (t *FrequencyTable) Len() int {
	return len(t.order)
}

// Tokenize lowercases the text, strips non-alphanumeric characters and
// splits on whitespace.
func Tokenize(text string) []string {
	cleaned := nonWordChars.ReplaceAllString(strings.ToLower(text), " ")
	return strings.Fields(cleaned)
}

// WordFrequencies tokenizes the text case-insensitively, stripping
// non-alphanumeric characters and splitting on whitespace, and counts
// every token with no minimum length.
func WordFrequencies(text string) *FrequencyTable {
	table := &FrequencyTable{counts: make(map[string]int)}
	for _, token := range Tokenize(text) {
		if _, seen := table.counts[token]; !seen {
			table.order = append(table.order, token)
		}
		table.counts[token]++
	}
	return table
}

// ExtractPeople returns person-name matches from the text
func ExtractPeople(text string) []string {
	return matchPatterns(text, peoplePatterns)
}

// ExtractOrganizations returns organization matches from the text
func ExtractOrganizations(text string) []string {
	return matchPatterns(text, organizationPatterns)
}

// ExtractAmounts returns monetary amount matches from the text
func ExtractAmounts(text string) []string {
	return matchPatterns(text, amountPatterns)
}

// ExtractDates returns date matches from the text
func ExtractDates(text string) []string {
	return matchPatterns(text, datePatterns)
}

func matchPatterns(text string, patterns []*regexp.Regexp) []string {
	var matches []string
	for _, p := range patterns {
		matches = append(matches, p.FindAllString(text, -1)...)
	}
	return dedupeCapped(matches, entityListCap)
}

// dedupeCapped removes duplicates preserving first-seen order and keeps
// at most max entries.
func dedupeCapped(values []string, max int) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
		if len(out) == max {
			break
		}
	}
	return out
}
