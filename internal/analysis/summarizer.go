package analysis

import (
	"sort"
	"strings"
)

const (
	// minSentenceChars is the length below which a trimmed sentence does
	// not qualify for frequency scoring.
	minSentenceChars = 20
	// fallbackChars is the length of the raw-content fallback summary
	// used for short documents.
	fallbackChars = 300
	// summarySentences is the number of sentences selected for the
	// extractive summary.
	summarySentences = 3
)

func isSentenceBoundary(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// Summarize produces an extractive summary of the content. Documents
// with three or fewer qualifying sentences fall back to the first 300
// characters of raw content. Otherwise each sentence is scored by the
// average whole-document frequency of its words and the top three are
// selected. Equal scores keep first-seen order.
func Summarize(content string) string {
	var sentences []string
	for _, s := range strings.FieldsFunc(content, isSentenceBoundary) {
		if len(strings.TrimSpace(s)) > minSentenceChars {
			sentences = append(sentences, s)
		}
	}

	if len(sentences) <= summarySentences {
		return truncateRunes(content, fallbackChars)
	}

	freq := WordFrequencies(content)

	type scoredSentence struct {
		index    int
		sentence string
		score    float64
	}

	scored := make([]scoredSentence, 0, len(sentences))
	for i, sentence := range sentences {
		words := strings.Fields(strings.ToLower(sentence))
		var sum float64
		for _, word := range words {
			sum += float64(freq.Count(word))
		}
		score := 0.0
		if len(words) > 0 {
			score = sum / float64(len(words))
		}
		scored = append(scored, scoredSentence{index: i, sentence: strings.TrimSpace(sentence), score: score})
	}

	// Stable sort keeps the original sentence order on ties.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	top := make([]string, 0, summarySentences)
	for _, s := range scored[:summarySentences] {
		top = append(top, s.sentence)
	}

	return strings.Join(top, ". ") + "."
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
