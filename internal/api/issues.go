package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vaadly/vaadly/internal/store"
)

// IssuesHandler handles the issue tracking endpoints.
type IssuesHandler struct {
	store store.IssueStore
	log   *slog.Logger
}

// NewIssuesHandler creates a new issues handler.
func NewIssuesHandler(st store.IssueStore, log *slog.Logger) *IssuesHandler {
	return &IssuesHandler{store: st, log: log}
}

// IssueRequest is the request body for creating or updating an issue.
type IssueRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"max=5000"`
	Status       string `json:"status" validate:"omitempty,oneof=open in_progress resolved"`
	Priority     string `json:"priority" validate:"omitempty,oneof=low medium high"`
	ReporterName string `json:"reporter_name" validate:"max=200"`
}

// List handles GET /api/issues.
func (h *IssuesHandler) List(w http.ResponseWriter, r *http.Request) {
	issues, err := h.store.ListIssues(r.Context())
	if err != nil {
		writeStoreError(w, h.log, err, "issues")
		return
	}
	WriteData(w, http.StatusOK, issues)
}

// Get handles GET /api/issues/{id}.
func (h *IssuesHandler) Get(w http.ResponseWriter, r *http.Request) {
	issue, err := h.store.GetIssue(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, h.log, err, "issue")
		return
	}
	WriteData(w, http.StatusOK, issue)
}

// Create handles POST /api/issues.
func (h *IssuesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req IssueRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	if req.Status == "" {
		req.Status = store.IssueStatusOpen
	}

	now := time.Now().Unix()
	issue := &store.Issue{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		ReporterName: req.ReporterName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.store.CreateIssue(r.Context(), issue); err != nil {
		writeStoreError(w, h.log, err, "issue")
		return
	}
	WriteData(w, http.StatusCreated, issue)
}

// Update handles PUT /api/issues/{id}.
func (h *IssuesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req IssueRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	issue, err := h.store.GetIssue(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, h.log, err, "issue")
		return
	}

	issue.Title = req.Title
	issue.Description = req.Description
	if req.Status != "" {
		issue.Status = req.Status
	}
	issue.Priority = req.Priority
	issue.ReporterName = req.ReporterName
	issue.UpdatedAt = time.Now().Unix()

	if err := h.store.UpdateIssue(ctx, issue); err != nil {
		writeStoreError(w, h.log, err, "issue")
		return
	}
	WriteData(w, http.StatusOK, issue)
}

// Delete handles DELETE /api/issues/{id}.
func (h *IssuesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteIssue(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, h.log, err, "issue")
		return
	}
	WriteData(w, http.StatusOK, map[string]string{"status": "deleted"})
}
