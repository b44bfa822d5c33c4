package services

import (
	"context"

	"starc/internal/domain/models"
)

// SuggestionService exposes the accept/reject review flow over a document's sentences
type SuggestionService interface {
	// ListSuggestions returns pending sentences; domain.ErrNotFound when there are none
	ListSuggestions(ctx context.Context, userID, documentID int64) ([]models.Suggestion, error)

	AcceptSuggestion(ctx context.Context, userID, documentID, sentenceID int64) (*models.Document, error)
	RejectSuggestion(ctx context.Context, userID, documentID, sentenceID int64) error
	AcceptAll(ctx context.Context, userID, documentID int64) (*models.Document, error)
	RejectAll(ctx context.Context, userID, documentID int64) error
}
