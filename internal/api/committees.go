package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vaadly/vaadly/internal/store"
)

// CommitteesHandler handles the committee endpoints.
type CommitteesHandler struct {
	store store.CommitteeStore
	log   *slog.Logger
}

// NewCommitteesHandler creates a new committees handler.
func NewCommitteesHandler(st store.CommitteeStore, log *slog.Logger) *CommitteesHandler {
	return &CommitteesHandler{store: st, log: log}
}

// CommitteeRequest is the request body for creating or updating a committee.
type CommitteeRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=5000"`
	Members     []string `json:"members" validate:"dive,max=200"`
}

// List handles GET /api/committees.
func (h *CommitteesHandler) List(w http.ResponseWriter, r *http.Request) {
	committees, err := h.store.ListCommittees(r.Context())
	if err != nil {
		writeStoreError(w, h.log, err, "committees")
		return
	}
	WriteData(w, http.StatusOK, committees)
}

// Get handles GET /api/committees/{id}.
func (h *CommitteesHandler) Get(w http.ResponseWriter, r *http.Request) {
	committee, err := h.store.GetCommittee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, h.log, err, "committee")
		return
	}
	WriteData(w, http.StatusOK, committee)
}

// Create handles POST /api/committees.
func (h *CommitteesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CommitteeRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	now := time.Now().Unix()
	committee := &store.Committee{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Members:     req.Members,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.store.CreateCommittee(r.Context(), committee); err != nil {
		writeStoreError(w, h.log, err, "committee")
		return
	}
	WriteData(w, http.StatusCreated, committee)
}

// Update handles PUT /api/committees/{id}.
func (h *CommitteesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req CommitteeRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	committee, err := h.store.GetCommittee(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, h.log, err, "committee")
		return
	}

	committee.Name = req.Name
	committee.Description = req.Description
	committee.Members = req.Members
	committee.UpdatedAt = time.Now().Unix()

	if err := h.store.UpdateCommittee(ctx, committee); err != nil {
		writeStoreError(w, h.log, err, "committee")
		return
	}
	WriteData(w, http.StatusOK, committee)
}

// Delete handles DELETE /api/committees/{id}.
func (h *CommitteesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteCommittee(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, h.log, err, "committee")
		return
	}
	WriteData(w, http.StatusOK, map[string]string{"status": "deleted"})
}
