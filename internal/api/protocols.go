package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vaadly/vaadly/internal/store"
)

// ProtocolsHandler handles the meeting protocol endpoints.
type ProtocolsHandler struct {
	store store.ProtocolStore
	log   *slog.Logger
}

// NewProtocolsHandler creates a new protocols handler.
func NewProtocolsHandler(st store.ProtocolStore, log *slog.Logger) *ProtocolsHandler {
	return &ProtocolsHandler{store: st, log: log}
}

// ProtocolRequest is the request body for creating or updating a protocol.
type ProtocolRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	MeetingDate int64  `json:"meeting_date" validate:"required"`
	Content     string `json:"content" validate:"required"`
}

// List handles GET /api/protocols.
func (h *ProtocolsHandler) List(w http.ResponseWriter, r *http.Request) {
	protocols, err := h.store.ListProtocols(r.Context())
	if err != nil {
		writeStoreError(w, h.log, err, "protocols")
		return
	}
	WriteData(w, http.StatusOK, protocols)
}

// Get handles GET /api/protocols/{id}.
func (h *ProtocolsHandler) Get(w http.ResponseWriter, r *http.Request) {
	protocol, err := h.store.GetProtocol(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, h.log, err, "protocol")
		return
	}
	WriteData(w, http.StatusOK, protocol)
}

// Create handles POST /api/protocols.
func (h *ProtocolsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProtocolRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	now := time.Now().Unix()
	protocol := &store.Protocol{
		ID:          uuid.NewString(),
		Title:       req.Title,
		MeetingDate: req.MeetingDate,
		Content:     req.Content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.store.CreateProtocol(r.Context(), protocol); err != nil {
		writeStoreError(w, h.log, err, "protocol")
		return
	}
	WriteData(w, http.StatusCreated, protocol)
}

// Update handles PUT /api/protocols/{id}.
func (h *ProtocolsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ProtocolRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	protocol, err := h.store.GetProtocol(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, h.log, err, "protocol")
		return
	}

	protocol.Title = req.Title
	protocol.MeetingDate = req.MeetingDate
	protocol.Content = req.Content
	protocol.UpdatedAt = time.Now().Unix()

	if err := h.store.UpdateProtocol(ctx, protocol); err != nil {
		writeStoreError(w, h.log, err, "protocol")
		return
	}
	WriteData(w, http.StatusOK, protocol)
}

// Delete handles DELETE /api/protocols/{id}.
func (h *ProtocolsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteProtocol(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, h.log, err, "protocol")
		return
	}
	WriteData(w, http.StatusOK, map[string]string{"status": "deleted"})
}
