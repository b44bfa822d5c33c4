package services

import "starc/internal/domain/models"

// TextAnalyzer holds the pure text operations used by ingestion and review
type TextAnalyzer interface {
	// SplitSentences splits text on sentence-ending punctuation
	SplitSentences(text string) []string

	// CountWords counts whitespace-separated words
	CountWords(text string) int

	// OrderSentences returns sentences in chain order
	OrderSentences(sentences []models.Sentence) []models.Sentence

	// JoinOriginal joins the chain-ordered original text of sentences
	JoinOriginal(sentences []models.Sentence) string

	// JoinRewritten joins the chain-ordered rewritten text of sentences
	JoinRewritten(sentences []models.Sentence) string
}
