package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vaadly/vaadly/internal/appctx"
	"github.com/vaadly/vaadly/internal/store"
)

// EventsHandler handles the event CRUD endpoints.
type EventsHandler struct {
	store store.EventStore
	log   *slog.Logger
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(st store.EventStore, log *slog.Logger) *EventsHandler {
	return &EventsHandler{store: st, log: log}
}

// EventRequest is the request body for creating or updating an event.
type EventRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Location    string `json:"location" validate:"max=500"`
	Category    string `json:"category" validate:"max=100"`
	StartsAt    int64  `json:"starts_at" validate:"required"`
	EndsAt      int64  `json:"ends_at"`
}

// List handles GET /api/events.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.store.ListEvents(r.Context())
	if err != nil {
		writeStoreError(w, h.log, err, "events")
		return
	}
	WriteData(w, http.StatusOK, events)
}

// Get handles GET /api/events/{id}.
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.store.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, h.log, err, "event")
		return
	}
	WriteData(w, http.StatusOK, event)
}

// Create handles POST /api/events.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	now := time.Now().Unix()
	event := &store.Event{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Category:    req.Category,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if user := appctx.UserFrom(r.Context()); user != nil {
		event.CreatedBy = user.ID
	}

	if err := h.store.CreateEvent(r.Context(), event); err != nil {
		writeStoreError(w, h.log, err, "event")
		return
	}
	WriteData(w, http.StatusCreated, event)
}

// Update handles PUT /api/events/{id}.
func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	event, err := h.store.GetEvent(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, h.log, err, "event")
		return
	}

	event.Title = req.Title
	event.Description = req.Description
	event.Location = req.Location
	event.Category = req.Category
	event.StartsAt = req.StartsAt
	event.EndsAt = req.EndsAt
	event.UpdatedAt = time.Now().Unix()

	if err := h.store.UpdateEvent(ctx, event); err != nil {
		writeStoreError(w, h.log, err, "event")
		return
	}
	WriteData(w, http.StatusOK, event)
}

// Delete handles DELETE /api/events/{id}.
func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, h.log, err, "event")
		return
	}
	WriteData(w, http.StatusOK, map[string]string{"status": "deleted"})
}
