package service

import (
	"sort"
	"strings"
	"unicode"

	"starc/internal/domain/models"
	"starc/internal/domain/services"
)

type textAnalyzer struct{}

// NewTextAnalyzer creates a new text analyzer
func NewTextAnalyzer() services.TextAnalyzer {
	return &textAnalyzer{}
}

// SplitSentences splits text after runs of '.', '!' or '?' that are followed
// by whitespace or the end of the text. Closing quotes and brackets directly
// after the punctuation stay with the sentence.
func (a *textAnalyzer) SplitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	start := 0

	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}

		end := i + 1
		for end < len(runes) && (isTerminal(runes[end]) || isCloser(runes[end])) {
			end++
		}
		if end < len(runes) && !unicode.IsSpace(runes[end]) {
			// "3.14", "e.g.x" and similar stay inside the sentence
			i = end - 1
			continue
		}

		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			sentences = append(sentences, s)
		}
		start = end
		i = end - 1
	}

	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '}', '”', '’':
		return true
	}
	return false
}

// CountWords counts whitespace-separated words
func (a *textAnalyzer) CountWords(text string) int {
	return len(strings.Fields(text))
}

// OrderSentences follows the preceding_sentence_id chain starting at every
// head (no predecessor, or a predecessor outside the set) in id order.
// Sentences never reached from a head, such as members of a cycle, are
// appended in id order.
func (a *textAnalyzer) OrderSentences(sentences []models.Sentence) []models.Sentence {
	byID := make(map[int64]int, len(sentences))
	for i, s := range sentences {
		byID[s.ID] = i
	}

	next := make(map[int64][]int)
	var heads []int
	for i, s := range sentences {
		if s.PrecedingSentenceID == nil {
			heads = append(heads, i)
			continue
		}
		if _, ok := byID[*s.PrecedingSentenceID]; !ok {
			heads = append(heads, i)
			continue
		}
		next[*s.PrecedingSentenceID] = append(next[*s.PrecedingSentenceID], i)
	}

	byIDOrder := func(idx []int) {
		sort.Slice(idx, func(x, y int) bool { return sentences[idx[x]].ID < sentences[idx[y]].ID })
	}
	byIDOrder(heads)
	for _, children := range next {
		byIDOrder(children)
	}

	ordered := make([]models.Sentence, 0, len(sentences))
	visited := make([]bool, len(sentences))

	var walk func(i int)
	walk = func(i int) {
		if visited[i] {
			return
		}
		visited[i] = true
		ordered = append(ordered, sentences[i])
		for _, child := range next[sentences[i].ID] {
			walk(child)
		}
	}
	for _, h := range heads {
		walk(h)
	}

	var rest []int
	for i := range sentences {
		if !visited[i] {
			rest = append(rest, i)
		}
	}
	byIDOrder(rest)
	for _, i := range rest {
		ordered = append(ordered, sentences[i])
	}

	return ordered
}

// JoinOriginal joins the chain-ordered original text with single spaces
func (a *textAnalyzer) JoinOriginal(sentences []models.Sentence) string {
	return a.join(sentences, func(s models.Sentence) string { return s.OriginalText })
}

// JoinRewritten joins the chain-ordered rewritten text with single spaces
func (a *textAnalyzer) JoinRewritten(sentences []models.Sentence) string {
	return a.join(sentences, func(s models.Sentence) string { return s.RewrittenText })
}

func (a *textAnalyzer) join(sentences []models.Sentence, field func(models.Sentence) string) string {
	ordered := a.OrderSentences(sentences)
	parts := make([]string, 0, len(ordered))
	for _, s := range ordered {
		if t := strings.TrimSpace(field(s)); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
