package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vaadly/vaadly/internal/store"
)

// ContactsHandler handles the contact directory endpoints.
type ContactsHandler struct {
	store store.ContactStore
	log   *slog.Logger
}

// NewContactsHandler creates a new contacts handler.
func NewContactsHandler(st store.ContactStore, log *slog.Logger) *ContactsHandler {
	return &ContactsHandler{store: st, log: log}
}

// ContactRequest is the request body for creating or updating a contact.
type ContactRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Role  string `json:"role" validate:"max=200"`
	Phone string `json:"phone" validate:"max=50"`
	Email string `json:"email" validate:"omitempty,email"`
}

// List handles GET /api/contacts.
func (h *ContactsHandler) List(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.store.ListContacts(r.Context())
	if err != nil {
		writeStoreError(w, h.log, err, "contacts")
		return
	}
	WriteData(w, http.StatusOK, contacts)
}

// Get handles GET /api/contacts/{id}.
func (h *ContactsHandler) Get(w http.ResponseWriter, r *http.Request) {
	contact, err := h.store.GetContact(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, h.log, err, "contact")
		return
	}
	WriteData(w, http.StatusOK, contact)
}

// Create handles POST /api/contacts.
func (h *ContactsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	now := time.Now().Unix()
	contact := &store.Contact{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Role:      req.Role,
		Phone:     req.Phone,
		Email:     req.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.store.CreateContact(r.Context(), contact); err != nil {
		writeStoreError(w, h.log, err, "contact")
		return
	}
	WriteData(w, http.StatusCreated, contact)
}

// Update handles PUT /api/contacts/{id}.
func (h *ContactsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	contact, err := h.store.GetContact(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, h.log, err, "contact")
		return
	}

	contact.Name = req.Name
	contact.Role = req.Role
	contact.Phone = req.Phone
	contact.Email = req.Email
	contact.UpdatedAt = time.Now().Unix()

	if err := h.store.UpdateContact(ctx, contact); err != nil {
		writeStoreError(w, h.log, err, "contact")
		return
	}
	WriteData(w, http.StatusOK, contact)
}

// Delete handles DELETE /api/contacts/{id}.
func (h *ContactsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteContact(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, h.log, err, "contact")
		return
	}
	WriteData(w, http.StatusOK, map[string]string{"status": "deleted"})
}
