package services

import (
	"context"

	"starc/internal/domain/models"
)

// Scorer obtains sentiment scores for a piece of text
type Scorer interface {
	Score(ctx context.Context, text string) (*models.Scores, error)
}

// Rewriter obtains a rewritten version of a piece of text
type Rewriter interface {
	Rewrite(ctx context.Context, text string) (string, error)
}
