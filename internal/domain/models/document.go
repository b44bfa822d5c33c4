package models

import "time"

// Document is the user-facing container for one piece of text.
type Document struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	OwnerID   int64     `json:"owner_id"`
	WordCount int       `json:"word_count"`
	CreatedAt time.Time `json:"created_at"`
}

// TextChunk is the text of a document tracked as one rewrite/scoring batch.
// InputText is the currently accepted text; RewrittenText is the joined
// rewrite produced at ingestion.
type TextChunk struct {
	ID            int64  `json:"id"`
	DocumentID    int64  `json:"document_id"`
	InputText     string `json:"input_text"`
	RewrittenText string `json:"rewritten_text"`
}

// Sentence is one original/rewritten pair. Sentences of a chunk form a
// singly linked chain through PrecedingSentenceID.
type Sentence struct {
	ID                  int64  `json:"id"`
	ChunkID             int64  `json:"chunk_id"`
	OriginalText        string `json:"original_text"`
	RewrittenText       string `json:"rewritten_text"`
	PrecedingSentenceID *int64 `json:"preceding_sentence_id"`
}

// IsPending reports whether the sentence still carries an unreviewed suggestion.
func (s *Sentence) IsPending() bool {
	return s.OriginalText != s.RewrittenText
}

// Accept adopts the suggestion. Returns false if there was nothing to accept.
func (s *Sentence) Accept() bool {
	if !s.IsPending() {
		return false
	}
	s.OriginalText = s.RewrittenText
	return true
}

// Reject discards the suggestion. Returns false if there was nothing to reject.
func (s *Sentence) Reject() bool {
	if !s.IsPending() {
		return false
	}
	s.RewrittenText = s.OriginalText
	return true
}

// DocumentDetails is the read model returned for a single document.
type DocumentDetails struct {
	ID                int64     `json:"id"`
	Title             string    `json:"title"`
	WordCount         int       `json:"word_count"`
	CreatedAt         time.Time `json:"created_at"`
	SentencesCombined string    `json:"sentences_combined"`
	PendingCount      int       `json:"pending_suggestions"`
}

// Suggestion is a pending sentence as shown to the reviewer.
type Suggestion struct {
	SentenceID        int64  `json:"sentence_id"`
	OriginalSentence  string `json:"original_sentence"`
	RewrittenSentence string `json:"rewritten_sentence"`
}
