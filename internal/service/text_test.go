package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"starc/internal/domain/models"
)

func ptr[T any](v T) *T { return &v }

func TestTextAnalyzer_SplitSentences(t *testing.T) {
	a := NewTextAnalyzer()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"simple", "One. Two! Three?", []string{"One.", "Two!", "Three?"}},
		{"no punctuation", "just some words", []string{"just some words"}},
		{"trailing fragment", "Done. and more", []string{"Done.", "and more"}},
		{"ellipsis and runs", "Wait... What?! Ok.", []string{"Wait...", "What?!", "Ok."}},
		{"closing quote", `He said "go." Then left.`, []string{`He said "go."`, "Then left."}},
		{"decimal", "Pi is 3.14 today. Yes.", []string{"Pi is 3.14 today.", "Yes."}},
		{"newlines", "Line one.\nLine two.", []string{"Line one.", "Line two."}},
		{"empty", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.SplitSentences(tt.text))
		})
	}
}

func TestTextAnalyzer_CountWords(t *testing.T) {
	a := NewTextAnalyzer()
	assert.Equal(t, 0, a.CountWords(""))
	assert.Equal(t, 4, a.CountWords("  one two\tthree\nfour "))
}

func TestTextAnalyzer_OrderSentences(t *testing.T) {
	a := NewTextAnalyzer()

	t.Run("follows chain not ids", func(t *testing.T) {
		sentences := []models.Sentence{
			{ID: 1, OriginalText: "B", PrecedingSentenceID: ptr(int64(3))},
			{ID: 2, OriginalText: "C", PrecedingSentenceID: ptr(int64(1))},
			{ID: 3, OriginalText: "A"},
		}
		assert.Equal(t, "A B C", a.JoinOriginal(sentences))
	})

	t.Run("missing predecessor starts a new head", func(t *testing.T) {
		sentences := []models.Sentence{
			{ID: 5, OriginalText: "Y", PrecedingSentenceID: ptr(int64(99))},
			{ID: 4, OriginalText: "X"},
		}
		ordered := a.OrderSentences(sentences)
		assert.Equal(t, []int64{4, 5}, []int64{ordered[0].ID, ordered[1].ID})
	})

	t.Run("cycle members appended in id order", func(t *testing.T) {
		sentences := []models.Sentence{
			{ID: 1, OriginalText: "head"},
			{ID: 3, OriginalText: "c3", PrecedingSentenceID: ptr(int64(2))},
			{ID: 2, OriginalText: "c2", PrecedingSentenceID: ptr(int64(3))},
		}
		assert.Equal(t, "head c2 c3", a.JoinOriginal(sentences))
	})

	t.Run("rewritten join", func(t *testing.T) {
		sentences := []models.Sentence{
			{ID: 1, OriginalText: "a", RewrittenText: "A"},
			{ID: 2, OriginalText: "b", RewrittenText: "B", PrecedingSentenceID: ptr(int64(1))},
		}
		assert.Equal(t, "A B", a.JoinRewritten(sentences))
	})
}
