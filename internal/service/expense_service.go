package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roomledger/roomledger/internal/calculator"
	"github.com/roomledger/roomledger/internal/models"
	"github.com/roomledger/roomledger/internal/storage"
)

// ExpenseService owns expense logging, the manager-only status transitions
// and the room summary.
type ExpenseService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewExpenseService creates a new expense service.
func NewExpenseService(store storage.Store, logger *slog.Logger) *ExpenseService {
	return &ExpenseService{store: store, logger: logger}
}

// List returns the room's expenses, newest first, member-only.
func (s *ExpenseService) List(ctx context.Context, identity *models.Identity, roomID string) ([]*models.Expense, error) {
	if !identity.InRoom(roomID) {
		return nil, ErrForbidden
	}
	expenses, err := s.store.ListExpensesByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, nil
}

// Create logs a pending expense. Members may only log expenses in their own
// room and only for themselves.
func (s *ExpenseService) Create(ctx context.Context, identity *models.Identity, roomID string, expense *models.Expense) (*models.Expense, error) {
	if !identity.InRoom(roomID) || expense.AddedByID != identity.ID {
		return nil, ErrForbidden
	}

	expense.RoomID = roomID
	expense.Status = models.ExpensePending
	expense.ApprovedByID = nil
	expense.ApprovedAt = nil

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	created, err := s.store.GetExpense(ctx, expense.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created expense: %w", err)
	}

	s.logger.Info("Expense created", "expense_id", created.ID, "room_id", roomID, "amount", created.Amount)
	return created, nil
}

// UpdateStatus transitions an expense's status, manager-only and scoped to
// the manager's own room. Reverting to pending clears the approver fields;
// approving or rejecting stamps the acting manager and the current time.
func (s *ExpenseService) UpdateStatus(ctx context.Context, identity *models.Identity, expenseID string, status models.ExpenseStatus) (*models.Expense, error) {
	if !identity.IsManager {
		return nil, ErrForbidden
	}

	expense, err := s.store.GetExpense(ctx, expenseID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrExpenseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	if !identity.InRoom(expense.RoomID) {
		return nil, ErrForbidden
	}

	var (
		approvedByID *string
		approvedAt   *int64
	)
	if status != models.ExpensePending {
		now := time.Now().Unix()
		approvedByID = &identity.ID
		approvedAt = &now
	}

	if err := s.store.UpdateExpenseStatus(ctx, expenseID, status, approvedByID, approvedAt); err != nil {
		return nil, fmt.Errorf("failed to update expense status: %w", err)
	}

	updated, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load updated expense: %w", err)
	}

	s.logger.Info("Expense status updated", "expense_id", expenseID, "status", string(status), "by", identity.ID)
	return updated, nil
}

// Summary aggregates the room's expenses into totals per status, category
// and roommate, member-only.
func (s *ExpenseService) Summary(ctx context.Context, identity *models.Identity, roomID string) (*calculator.Summary, error) {
	if !identity.InRoom(roomID) {
		return nil, ErrForbidden
	}

	expenses, err := s.store.ListExpensesByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	members, err := s.store.ListRoommatesByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	summary := calculator.Summarize(expenses, len(members))
	return &summary, nil
}
