package auth

import (
	"context"
	"errors"
	"fmt"

	"starc/internal/domain"
	"starc/internal/domain/repositories"
)

// OwnerBasedAuthorizer implements ResourceAuthorizer using ownership checks.
// Repository lookups are already scoped by owner, so a resource owned by
// someone else comes back as domain.ErrNotFound just like a missing one.
type OwnerBasedAuthorizer struct {
	docRepo  repositories.DocumentRepository
	taskRepo repositories.TaskRepository
}

// NewOwnerBasedAuthorizer creates a new ownership-based authorizer
func NewOwnerBasedAuthorizer(
	docRepo repositories.DocumentRepository,
	taskRepo repositories.TaskRepository,
) *OwnerBasedAuthorizer {
	return &OwnerBasedAuthorizer{
		docRepo:  docRepo,
		taskRepo: taskRepo,
	}
}

// CanAccessDocument checks if user owns the document
func (a *OwnerBasedAuthorizer) CanAccessDocument(ctx context.Context, userID, documentID int64) error {
	if _, err := a.docRepo.GetByID(ctx, documentID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.NotFoundError{Message: "document not found or access denied"}
		}
		return fmt.Errorf("check document access: %w", err)
	}
	return nil
}

// CanAccessTask checks if user owns the task
func (a *OwnerBasedAuthorizer) CanAccessTask(ctx context.Context, userID, taskID int64) error {
	if _, err := a.taskRepo.GetByID(ctx, taskID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.NotFoundError{Message: "task not found or access denied"}
		}
		return fmt.Errorf("check task access: %w", err)
	}
	return nil
}
