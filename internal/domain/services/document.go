package services

import (
	"context"

	"starc/internal/domain/models"
)

// DocumentService handles document ingestion and lifecycle.
// userID is used for the ownership check on every call.
type DocumentService interface {
	// CreateDocument splits, rewrites and scores the text, then persists the document
	CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*models.Document, error)

	GetDocument(ctx context.Context, userID, documentID int64) (*models.DocumentDetails, error)
	ListDocuments(ctx context.Context, userID int64) ([]models.Document, error)

	// UpdateDocument changes the title and/or re-ingests the text
	UpdateDocument(ctx context.Context, userID, documentID int64, req *UpdateDocumentRequest) (*models.DocumentDetails, error)

	DeleteDocument(ctx context.Context, userID, documentID int64) error

	// GetScores returns the initial snapshot and, if taken, the final one
	GetScores(ctx context.Context, userID, documentID int64) ([]models.ScoreSnapshot, error)

	// SnapshotFinalScore scores the accepted text once no suggestion is pending
	SnapshotFinalScore(ctx context.Context, userID, documentID int64) (*models.ScoreSnapshot, error)
}

// CreateDocumentRequest represents a document creation request
type CreateDocumentRequest struct {
	UserID int64  `json:"-"` // Set by handler from auth context, not from request body
	Title  string `json:"title"`
	Text   string `json:"text"`
}

// UpdateDocumentRequest represents a document update request
type UpdateDocumentRequest struct {
	Title *string `json:"title,omitempty"`
	Text  *string `json:"text,omitempty"`
}
