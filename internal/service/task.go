package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"starc/internal/config"
	"starc/internal/domain"
	"starc/internal/domain/models"
	"starc/internal/domain/repositories"
	"starc/internal/domain/services"
)

// taskService implements the TaskService interface
type taskService struct {
	taskRepo   repositories.TaskRepository
	txManager  repositories.TransactionManager
	authorizer services.ResourceAuthorizer
	logger     *slog.Logger
}

// NewTaskService creates a new task service
func NewTaskService(
	taskRepo repositories.TaskRepository,
	txManager repositories.TransactionManager,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) services.TaskService {
	return &taskService{
		taskRepo:   taskRepo,
		txManager:  txManager,
		authorizer: authorizer,
		logger:     logger,
	}
}

// ListTree returns the caller's tasks as a forest. Roots and children are ordered by id.
func (s *taskService) ListTree(ctx context.Context, userID int64) ([]*models.TaskNode, error) {
	tasks, err := s.taskRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return buildTaskTree(tasks), nil
}

// buildTaskTree nests tasks under their parents. tasks must be ordered by id.
func buildTaskTree(tasks []models.Task) []*models.TaskNode {
	nodes := make(map[int64]*models.TaskNode, len(tasks))
	for _, task := range tasks {
		nodes[task.ID] = &models.TaskNode{Task: task, SubItems: []*models.TaskNode{}}
	}

	roots := []*models.TaskNode{}
	for _, task := range tasks {
		node := nodes[task.ID]
		if task.ParentID != nil {
			if parent, ok := nodes[*task.ParentID]; ok {
				parent.SubItems = append(parent.SubItems, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

// CreateTask creates a task, optionally under one of the caller's tasks
func (s *taskService) CreateTask(ctx context.Context, userID int64, req *services.CreateTaskRequest) (*models.Task, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := validateTaskContent(req.Content); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		if err := s.checkParent(ctx, userID, *req.ParentID); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		OwnerID:  userID,
		ParentID: req.ParentID,
		Content:  req.Content,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("task created", "id", task.ID, "owner_id", userID, "parent_id", task.ParentID)
	return task, nil
}

func validateTaskContent(content string) error {
	err := validation.Validate(content,
		validation.Required,
		validation.RuneLength(1, config.MaxTaskContentLength),
	)
	if err != nil {
		return fmt.Errorf("%w: content: %v", domain.ErrValidation, err)
	}
	return nil
}

// UpdateTask changes content and/or completion
func (s *taskService) UpdateTask(ctx context.Context, userID, taskID int64, req *services.UpdateTaskRequest) (*models.Task, error) {
	if req.Content == nil && req.IsCompleted == nil {
		return nil, &domain.ValidationError{Message: "content or is_completed is required"}
	}

	task, err := s.getOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		if err := validateTaskContent(content); err != nil {
			return nil, err
		}
		task.Content = content
	}
	if req.IsCompleted != nil {
		task.IsCompleted = *req.IsCompleted
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("task updated", "id", task.ID, "is_completed", task.IsCompleted)
	return task, nil
}

// MoveTask reparents a task. Moving a task under itself or one of its
// descendants is rejected.
func (s *taskService) MoveTask(ctx context.Context, userID, taskID int64, req *services.MoveTaskRequest) (*models.Task, error) {
	var task *models.Task
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		task, err = s.getOwned(txCtx, userID, taskID)
		if err != nil {
			return err
		}

		if req.NewParentID != nil {
			if err := s.checkParent(txCtx, userID, *req.NewParentID); err != nil {
				return err
			}
			if err := s.checkNoCycle(txCtx, userID, taskID, *req.NewParentID); err != nil {
				return err
			}
		}

		task.ParentID = req.NewParentID
		return s.taskRepo.Update(txCtx, task)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("task moved", "id", taskID, "parent_id", req.NewParentID)
	return task, nil
}

// checkNoCycle walks up from the new parent; reaching taskID means the
// parent is the task itself or one of its descendants
func (s *taskService) checkNoCycle(ctx context.Context, userID, taskID, newParentID int64) error {
	seen := make(map[int64]bool)
	current := &newParentID
	for current != nil {
		if *current == taskID {
			return &domain.ValidationError{Message: "cannot move a task under itself or one of its subtasks"}
		}
		if seen[*current] {
			return fmt.Errorf("task %d: parent chain loops", *current)
		}
		seen[*current] = true

		ancestor, err := s.taskRepo.GetByID(ctx, *current, userID)
		if err != nil {
			return err
		}
		current = ancestor.ParentID
	}
	return nil
}

// DeleteTask removes the task and its subtree
func (s *taskService) DeleteTask(ctx context.Context, userID, taskID int64) error {
	if err := s.taskRepo.Delete(ctx, taskID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.NotFoundError{Message: "task not found or access denied"}
		}
		return err
	}

	s.logger.Info("task deleted", "id", taskID, "owner_id", userID)
	return nil
}

func (s *taskService) checkParent(ctx context.Context, userID, parentID int64) error {
	if err := s.authorizer.CanAccessTask(ctx, userID, parentID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.NotFoundError{Message: "parent task not found"}
		}
		return err
	}
	return nil
}

func (s *taskService) getOwned(ctx context.Context, userID, taskID int64) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.NotFoundError{Message: "task not found or access denied"}
		}
		return nil, err
	}
	return task, nil
}
