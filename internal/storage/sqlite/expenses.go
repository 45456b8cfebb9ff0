package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/roomledger/roomledger/internal/models"
	"github.com/roomledger/roomledger/internal/storage"
)

// CreateExpense inserts a new expense.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.Status == "" {
		expense.Status = models.ExpensePending
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, description, amount, category, date, room_id, added_by_id, status, approved_by_id, approved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID,
		expense.Description,
		expense.Amount,
		expense.Category,
		expense.Date,
		expense.RoomID,
		expense.AddedByID,
		string(expense.Status),
		expense.ApprovedByID,
		expense.ApprovedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID with its display names joined in.
func (s *SQLiteStore) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx, expenseSelect+" WHERE e.id = ?", id)
	expense, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// ListExpensesByRoom returns a room's expenses ordered by date descending,
// with AddedByName/ApprovedByName populated.
func (s *SQLiteStore) ListExpensesByRoom(ctx context.Context, roomID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		expenseSelect+" WHERE e.room_id = ? ORDER BY e.date DESC", roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []*models.Expense{}
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

// UpdateExpenseStatus sets the status and approver fields.
func (s *SQLiteStore) UpdateExpenseStatus(ctx context.Context, id string, status models.ExpenseStatus, approvedByID *string, approvedAt *int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE expenses SET status = ?, approved_by_id = ?, approved_at = ? WHERE id = ?",
		string(status), approvedByID, approvedAt, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

const expenseSelect = `
	SELECT e.id, e.description, e.amount, e.category, e.date, e.room_id,
	       e.added_by_id, e.status, e.approved_by_id, e.approved_at,
	       COALESCE(a.name, ''), COALESCE(p.name, '')
	FROM expenses e
	LEFT JOIN roommates a ON a.id = e.added_by_id
	LEFT JOIN roommates p ON p.id = e.approved_by_id`

func scanExpense(row scanner) (*models.Expense, error) {
	expense := &models.Expense{}
	var (
		status       string
		approvedByID sql.NullString
		approvedAt   sql.NullInt64
	)
	err := row.Scan(
		&expense.ID,
		&expense.Description,
		&expense.Amount,
		&expense.Category,
		&expense.Date,
		&expense.RoomID,
		&expense.AddedByID,
		&status,
		&approvedByID,
		&approvedAt,
		&expense.AddedByName,
		&expense.ApprovedByName,
	)
	if err != nil {
		return nil, err
	}
	expense.Status = models.ExpenseStatus(status)
	if approvedByID.Valid {
		expense.ApprovedByID = &approvedByID.String
	}
	if approvedAt.Valid {
		expense.ApprovedAt = &approvedAt.Int64
	}
	return expense, nil
}
