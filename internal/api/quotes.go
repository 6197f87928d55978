package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vaadly/vaadly/internal/prom"
	"github.com/vaadly/vaadly/internal/store"
)

// QuotesHandler handles the prom vendor-quote endpoints. Quotes are nested
// under their planning event; list responses carry the computed badges.
type QuotesHandler struct {
	store store.QuoteStore
	log   *slog.Logger
}

// NewQuotesHandler creates a new quotes handler.
func NewQuotesHandler(st store.QuoteStore, log *slog.Logger) *QuotesHandler {
	return &QuotesHandler{store: st, log: log}
}

// QuoteRequest is the request body for creating or updating a quote.
type QuoteRequest struct {
	VendorName          string   `json:"vendor_name" validate:"required,max=200"`
	VendorPhone         string   `json:"vendor_phone" validate:"max=50"`
	Category            string   `json:"category" validate:"required,oneof=venue catering dj photographer host decoration transportation other"`
	TotalPrice          float64  `json:"total_price" validate:"required,gt=0"`
	PricePerParticipant *float64 `json:"price_per_participant" validate:"omitempty,gt=0"`
	Availability        string   `json:"availability" validate:"omitempty,oneof=available tentative unavailable unknown"`
	Rating              *float64 `json:"rating" validate:"omitempty,min=1,max=5"`
	Pros                string   `json:"pros" validate:"max=2000"`
	Cons                string   `json:"cons" validate:"max=2000"`
}

// QuoteView is a quote together with its comparison badges.
type QuoteView struct {
	*store.PromQuote
	Badges prom.Badges `json:"badges"`
}

// List handles GET /api/events/{eventID}/quotes.
func (h *QuotesHandler) List(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.store.ListQuotesByEvent(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		writeStoreError(w, h.log, err, "quotes")
		return
	}

	badges := prom.ComputeAllBadges(quotes)
	views := make([]QuoteView, 0, len(quotes))
	for _, q := range quotes {
		views = append(views, QuoteView{PromQuote: q, Badges: badges[q.ID]})
	}
	WriteData(w, http.StatusOK, views)
}

// Get handles GET /api/events/{eventID}/quotes/{id}.
func (h *QuotesHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	quote, err := h.store.GetQuote(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, h.log, err, "quote")
		return
	}

	// Badges depend on the quote's category peers at the same event.
	peers, err := h.store.ListQuotesByEvent(ctx, quote.EventID)
	if err != nil {
		writeStoreError(w, h.log, err, "quotes")
		return
	}

	WriteData(w, http.StatusOK, QuoteView{
		PromQuote: quote,
		Badges:    prom.ComputeBadges(quote, peers),
	})
}

// Create handles POST /api/events/{eventID}/quotes.
func (h *QuotesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	if req.Availability == "" {
		req.Availability = store.AvailabilityUnknown
	}

	now := time.Now().Unix()
	quote := &store.PromQuote{
		ID:                  uuid.NewString(),
		EventID:             chi.URLParam(r, "eventID"),
		VendorName:          req.VendorName,
		VendorPhone:         req.VendorPhone,
		Category:            req.Category,
		TotalPrice:          req.TotalPrice,
		PricePerParticipant: req.PricePerParticipant,
		Availability:        req.Availability,
		Rating:              req.Rating,
		Pros:                req.Pros,
		Cons:                req.Cons,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := h.store.CreateQuote(r.Context(), quote); err != nil {
		writeStoreError(w, h.log, err, "quote")
		return
	}
	WriteData(w, http.StatusCreated, quote)
}

// Update handles PUT /api/events/{eventID}/quotes/{id}.
func (h *QuotesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	quote, err := h.store.GetQuote(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, h.log, err, "quote")
		return
	}

	quote.VendorName = req.VendorName
	quote.VendorPhone = req.VendorPhone
	quote.Category = req.Category
	quote.TotalPrice = req.TotalPrice
	quote.PricePerParticipant = req.PricePerParticipant
	if req.Availability != "" {
		quote.Availability = req.Availability
	}
	quote.Rating = req.Rating
	quote.Pros = req.Pros
	quote.Cons = req.Cons
	quote.UpdatedAt = time.Now().Unix()

	if err := h.store.UpdateQuote(ctx, quote); err != nil {
		writeStoreError(w, h.log, err, "quote")
		return
	}
	WriteData(w, http.StatusOK, quote)
}

// Delete handles DELETE /api/events/{eventID}/quotes/{id}.
func (h *QuotesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteQuote(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, h.log, err, "quote")
		return
	}
	WriteData(w, http.StatusOK, map[string]string{"status": "deleted"})
}
