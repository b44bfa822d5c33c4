package repositories

import (
	"context"

	"starc/internal/domain/models"
)

// DocumentRepository defines data access operations for documents.
// Lookups scoped by ownerID return domain.ErrNotFound for documents
// owned by someone else.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id, ownerID int64) (*models.Document, error)

	// ListByOwner returns the owner's documents, newest first
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Document, error)

	UpdateTitle(ctx context.Context, id int64, title string) error
	UpdateWordCount(ctx context.Context, id int64, wordCount int) error

	// Delete removes the document; chunk, sentences and scores cascade
	Delete(ctx context.Context, id, ownerID int64) error
}

// TextChunkRepository defines data access operations for text chunks
type TextChunkRepository interface {
	Create(ctx context.Context, chunk *models.TextChunk) error

	// GetByDocument returns the document's chunk (lowest id if several exist)
	GetByDocument(ctx context.Context, documentID int64) (*models.TextChunk, error)

	UpdateInputText(ctx context.Context, id int64, inputText string) error
	UpdateTexts(ctx context.Context, chunk *models.TextChunk) error
}

// SentenceRepository defines data access operations for sentences
type SentenceRepository interface {
	// CreateChain inserts sentences in order, linking each to the one before it.
	// IDs and PrecedingSentenceID are filled in on the passed slice.
	CreateChain(ctx context.Context, chunkID int64, sentences []models.Sentence) error

	// GetByID retrieves a sentence that belongs to the given chunk
	GetByID(ctx context.Context, id, chunkID int64) (*models.Sentence, error)

	// ListByChunk returns all sentences of a chunk ordered by id
	ListByChunk(ctx context.Context, chunkID int64) ([]models.Sentence, error)

	// ListPending returns sentences whose original and rewritten text differ, ordered by id
	ListPending(ctx context.Context, chunkID int64) ([]models.Sentence, error)

	// Update persists both text fields of a sentence
	Update(ctx context.Context, sentence *models.Sentence) error

	// AcceptAll copies rewritten text into original text for every sentence of a chunk
	AcceptAll(ctx context.Context, chunkID int64) (int64, error)

	// RejectAll copies original text into rewritten text for every sentence of a chunk
	RejectAll(ctx context.Context, chunkID int64) (int64, error)

	DeleteByChunk(ctx context.Context, chunkID int64) error
}

// ScoreRepository stores initial and final score snapshots
type ScoreRepository interface {
	// Save stores the snapshot of the given kind, replacing an existing one
	Save(ctx context.Context, chunkID int64, kind models.ScoreKind, scores models.Scores) (*models.ScoreSnapshot, error)

	// Get returns domain.ErrNotFound when no snapshot of that kind exists
	Get(ctx context.Context, chunkID int64, kind models.ScoreKind) (*models.ScoreSnapshot, error)

	Delete(ctx context.Context, chunkID int64, kind models.ScoreKind) error
}
