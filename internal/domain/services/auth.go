package services

import "context"

// ResourceAuthorizer checks if a user can access resources.
// Ownership is the only rule: a user can access what they own.
// A resource that does not exist and one owned by someone else
// both yield domain.ErrNotFound, so callers cannot discover other users' ids.
type ResourceAuthorizer interface {
	// CanAccessDocument checks if user owns the document
	CanAccessDocument(ctx context.Context, userID, documentID int64) error

	// CanAccessTask checks if user owns the task
	CanAccessTask(ctx context.Context, userID, taskID int64) error
}
