package handler

import (
	"log/slog"
	"net/http"

	"starc/internal/domain/models"
	"starc/internal/domain/services"
	"starc/internal/httputil"
)

// TaskHandler handles the todo list endpoints
type TaskHandler struct {
	tasks  services.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(tasks services.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:  tasks,
		logger: logger,
	}
}

// TaskTreeResponse wraps the caller's task forest
type TaskTreeResponse struct {
	Tasks []*models.TaskNode `json:"tasks"`
}

type moveTaskBody struct {
	NewParentID httputil.Optional[int64] `json:"new_parent_id"`
}

// ListTasks returns the caller's tasks as a tree
// GET /tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tree, err := h.tasks.ListTree(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, TaskTreeResponse{Tasks: tree})
}

// CreateTask adds a task, optionally under a parent
// POST /tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req services.CreateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, task)
}

// UpdateTask edits content and/or completion
// PUT /tasks/{task_id}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r, "task_id")
	if !ok {
		return
	}

	var req services.UpdateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	task, err := h.tasks.UpdateTask(r.Context(), httputil.GetUserID(r), taskID, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, task)
}

// MoveTask reparents a task
// PUT /tasks/{task_id}/move
func (h *TaskHandler) MoveTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r, "task_id")
	if !ok {
		return
	}

	var body moveTaskBody
	if !decodeBody(w, r, &body) {
		return
	}
	if !body.NewParentID.Present {
		httputil.RespondError(w, http.StatusBadRequest, "new_parent_id is required (null moves the task to the top level)")
		return
	}

	req := services.MoveTaskRequest{NewParentID: body.NewParentID.Value}
	task, err := h.tasks.MoveTask(r.Context(), httputil.GetUserID(r), taskID, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, task)
}

// DeleteTask removes a task and its subtasks
// DELETE /tasks/{task_id}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r, "task_id")
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), httputil.GetUserID(r), taskID); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondMessage(w, http.StatusOK, "task and its subtasks deleted successfully")
}
