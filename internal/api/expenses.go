package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vaadly/vaadly/internal/store"
)

// ExpensesHandler handles the financial ledger endpoints.
type ExpensesHandler struct {
	store store.ExpenseStore
	log   *slog.Logger
}

// NewExpensesHandler creates a new expenses handler.
func NewExpensesHandler(st store.ExpenseStore, log *slog.Logger) *ExpensesHandler {
	return &ExpensesHandler{store: st, log: log}
}

// ExpenseRequest is the request body for creating or updating a ledger entry.
// Amount is in agorot.
type ExpenseRequest struct {
	Description string `json:"description" validate:"required,max=500"`
	Amount      int64  `json:"amount" validate:"required,min=1"`
	Type        string `json:"type" validate:"required,oneof=income expense"`
	Category    string `json:"category" validate:"max=100"`
	OccurredAt  int64  `json:"occurred_at" validate:"required"`
	ReceiptURL  string `json:"receipt_url" validate:"omitempty,url"`
}

// LedgerSummary is the response for GET /api/expenses/summary.
type LedgerSummary struct {
	TotalIncome  int64 `json:"total_income"`
	TotalExpense int64 `json:"total_expense"`
	Balance      int64 `json:"balance"`
	EntryCount   int   `json:"entry_count"`
}

// List handles GET /api/expenses.
func (h *ExpensesHandler) List(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.store.ListExpenses(r.Context())
	if err != nil {
		writeStoreError(w, h.log, err, "expenses")
		return
	}
	WriteData(w, http.StatusOK, expenses)
}

// Summary handles GET /api/expenses/summary.
func (h *ExpensesHandler) Summary(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.store.ListExpenses(r.Context())
	if err != nil {
		writeStoreError(w, h.log, err, "expenses")
		return
	}

	summary := LedgerSummary{EntryCount: len(expenses)}
	for _, e := range expenses {
		switch e.Type {
		case store.ExpenseTypeIncome:
			summary.TotalIncome += e.Amount
		case store.ExpenseTypeExpense:
			summary.TotalExpense += e.Amount
		}
	}
	summary.Balance = summary.TotalIncome - summary.TotalExpense

	WriteData(w, http.StatusOK, summary)
}

// Get handles GET /api/expenses/{id}.
func (h *ExpensesHandler) Get(w http.ResponseWriter, r *http.Request) {
	expense, err := h.store.GetExpense(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, h.log, err, "expense")
		return
	}
	WriteData(w, http.StatusOK, expense)
}

// Create handles POST /api/expenses.
func (h *ExpensesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ExpenseRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	now := time.Now().Unix()
	expense := &store.Expense{
		ID:          uuid.NewString(),
		Description: req.Description,
		Amount:      req.Amount,
		Type:        req.Type,
		Category:    req.Category,
		OccurredAt:  req.OccurredAt,
		ReceiptURL:  req.ReceiptURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.store.CreateExpense(r.Context(), expense); err != nil {
		writeStoreError(w, h.log, err, "expense")
		return
	}
	WriteData(w, http.StatusCreated, expense)
}

// Update handles PUT /api/expenses/{id}.
func (h *ExpensesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ExpenseRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	expense, err := h.store.GetExpense(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, h.log, err, "expense")
		return
	}

	expense.Description = req.Description
	expense.Amount = req.Amount
	expense.Type = req.Type
	expense.Category = req.Category
	expense.OccurredAt = req.OccurredAt
	expense.ReceiptURL = req.ReceiptURL
	expense.UpdatedAt = time.Now().Unix()

	if err := h.store.UpdateExpense(ctx, expense); err != nil {
		writeStoreError(w, h.log, err, "expense")
		return
	}
	WriteData(w, http.StatusOK, expense)
}

// Delete handles DELETE /api/expenses/{id}.
func (h *ExpensesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteExpense(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, h.log, err, "expense")
		return
	}
	WriteData(w, http.StatusOK, map[string]string{"status": "deleted"})
}
