package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vaadly/vaadly/internal/store"
)

// VendorsHandler handles the vendor directory endpoints.
type VendorsHandler struct {
	store store.VendorStore
	log   *slog.Logger
}

// NewVendorsHandler creates a new vendors handler.
func NewVendorsHandler(st store.VendorStore, log *slog.Logger) *VendorsHandler {
	return &VendorsHandler{store: st, log: log}
}

// VendorRequest is the request body for creating or updating a vendor.
type VendorRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Category string `json:"category" validate:"max=100"`
	Phone    string `json:"phone" validate:"max=50"`
	Email    string `json:"email" validate:"omitempty,email"`
	Notes    string `json:"notes" validate:"max=5000"`
}

// List handles GET /api/vendors.
func (h *VendorsHandler) List(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.store.ListVendors(r.Context())
	if err != nil {
		writeStoreError(w, h.log, err, "vendors")
		return
	}
	WriteData(w, http.StatusOK, vendors)
}

// Get handles GET /api/vendors/{id}.
func (h *VendorsHandler) Get(w http.ResponseWriter, r *http.Request) {
	vendor, err := h.store.GetVendor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, h.log, err, "vendor")
		return
	}
	WriteData(w, http.StatusOK, vendor)
}

// Create handles POST /api/vendors.
func (h *VendorsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req VendorRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	now := time.Now().Unix()
	vendor := &store.Vendor{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Category:  req.Category,
		Phone:     req.Phone,
		Email:     req.Email,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.store.CreateVendor(r.Context(), vendor); err != nil {
		writeStoreError(w, h.log, err, "vendor")
		return
	}
	WriteData(w, http.StatusCreated, vendor)
}

// Update handles PUT /api/vendors/{id}.
func (h *VendorsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req VendorRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	vendor, err := h.store.GetVendor(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, h.log, err, "vendor")
		return
	}

	vendor.Name = req.Name
	vendor.Category = req.Category
	vendor.Phone = req.Phone
	vendor.Email = req.Email
	vendor.Notes = req.Notes
	vendor.UpdatedAt = time.Now().Unix()

	if err := h.store.UpdateVendor(ctx, vendor); err != nil {
		writeStoreError(w, h.log, err, "vendor")
		return
	}
	WriteData(w, http.StatusOK, vendor)
}

// Delete handles DELETE /api/vendors/{id}.
func (h *VendorsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteVendor(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, h.log, err, "vendor")
		return
	}
	WriteData(w, http.StatusOK, map[string]string{"status": "deleted"})
}
