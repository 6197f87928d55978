package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vaadly/vaadly/internal/store"
)

// TasksHandler handles the task CRUD endpoints.
type TasksHandler struct {
	store store.TaskStore
	log   *slog.Logger
}

// NewTasksHandler creates a new tasks handler.
func NewTasksHandler(st store.TaskStore, log *slog.Logger) *TasksHandler {
	return &TasksHandler{store: st, log: log}
}

// TaskRequest is the request body for creating or updating a task.
type TaskRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"max=5000"`
	Status       string `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	Priority     string `json:"priority" validate:"omitempty,oneof=low medium high"`
	AssigneeName string `json:"assignee_name" validate:"max=200"`
	EventID      string `json:"event_id"`
	DueAt        int64  `json:"due_at"`
}

// List handles GET /api/tasks.
func (h *TasksHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.store.ListTasks(r.Context())
	if err != nil {
		writeStoreError(w, h.log, err, "tasks")
		return
	}
	WriteData(w, http.StatusOK, tasks)
}

// Get handles GET /api/tasks/{id}.
func (h *TasksHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.store.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, h.log, err, "task")
		return
	}
	WriteData(w, http.StatusOK, task)
}

// Create handles POST /api/tasks.
func (h *TasksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	if req.Status == "" {
		req.Status = store.TaskStatusTodo
	}

	now := time.Now().Unix()
	task := &store.Task{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		AssigneeName: req.AssigneeName,
		EventID:      req.EventID,
		DueAt:        req.DueAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.store.CreateTask(r.Context(), task); err != nil {
		writeStoreError(w, h.log, err, "task")
		return
	}
	WriteData(w, http.StatusCreated, task)
}

// Update handles PUT /api/tasks/{id}.
func (h *TasksHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	task, err := h.store.GetTask(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, h.log, err, "task")
		return
	}

	task.Title = req.Title
	task.Description = req.Description
	if req.Status != "" {
		task.Status = req.Status
	}
	task.Priority = req.Priority
	task.AssigneeName = req.AssigneeName
	task.EventID = req.EventID
	task.DueAt = req.DueAt
	task.UpdatedAt = time.Now().Unix()

	if err := h.store.UpdateTask(ctx, task); err != nil {
		writeStoreError(w, h.log, err, "task")
		return
	}
	WriteData(w, http.StatusOK, task)
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TasksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, h.log, err, "task")
		return
	}
	WriteData(w, http.StatusOK, map[string]string{"status": "deleted"})
}
