package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/roomledger/roomledger/internal/middleware"
	"github.com/roomledger/roomledger/internal/models"
)

// handleListExpenses implements GET /rooms/{roomId}/expenses.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	expenses, err := s.expenseSvc.List(r.Context(), identity, chi.URLParam(r, "roomId"))
	if err != nil {
		s.serviceError(w, err, "Failed to fetch expenses")
		return
	}
	s.respondJSON(w, http.StatusOK, expenses)
}

type createExpenseRequest struct {
	Description string   `json:"description"`
	Amount      *float64 `json:"amount"`
	Category    string   `json:"category"`
	Date        string   `json:"date"` // RFC 3339
	AddedByID   string   `json:"addedById"`
}

// handleCreateExpense implements POST /rooms/{roomId}/expenses.
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if strings.TrimSpace(req.Description) == "" || req.Amount == nil ||
		req.Category == "" || req.Date == "" || req.AddedByID == "" {
		s.respondError(w, http.StatusBadRequest, "description, amount, category, date, addedById required")
		return
	}
	if *req.Amount < 0 {
		s.respondError(w, http.StatusBadRequest, "Amount must be non-negative")
		return
	}
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "date must be RFC 3339 format")
		return
	}

	identity := middleware.GetIdentity(r.Context())
	expense := &models.Expense{
		Description: strings.TrimSpace(req.Description),
		Amount:      *req.Amount,
		Category:    req.Category,
		Date:        date.Unix(),
		AddedByID:   req.AddedByID,
	}
	created, err := s.expenseSvc.Create(r.Context(), identity, chi.URLParam(r, "roomId"), expense)
	if err != nil {
		s.serviceError(w, err, "Failed to create expense")
		return
	}

	s.respondJSON(w, http.StatusOK, created)
}

type updateExpenseStatusRequest struct {
	Status string `json:"status"`
}

// handleUpdateExpenseStatus implements POST /expenses/{expenseId}/status
// (manager-only).
func (s *Server) handleUpdateExpenseStatus(w http.ResponseWriter, r *http.Request) {
	var req updateExpenseStatusRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	status := models.ExpenseStatus(req.Status)
	if !status.Valid() {
		s.respondError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	identity := middleware.GetIdentity(r.Context())
	expense, err := s.expenseSvc.UpdateStatus(r.Context(), identity, chi.URLParam(r, "expenseId"), status)
	if err != nil {
		s.serviceError(w, err, "Failed to update expense status")
		return
	}

	s.respondJSON(w, http.StatusOK, expense)
}

// handleExpenseSummary implements GET /rooms/{roomId}/expenses/summary.
func (s *Server) handleExpenseSummary(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	summary, err := s.expenseSvc.Summary(r.Context(), identity, chi.URLParam(r, "roomId"))
	if err != nil {
		s.serviceError(w, err, "Failed to summarize expenses")
		return
	}
	s.respondJSON(w, http.StatusOK, summary)
}
