package services

import (
	"context"

	"starc/internal/domain/models"
)

// SearchService finds the caller's documents by title
type SearchService interface {
	SearchTitles(ctx context.Context, userID int64, query string) (*models.SearchResults, error)
}
