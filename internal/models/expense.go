package models

// ExpenseStatus is the approval state of an expense. The string values are
// external contract.
type ExpenseStatus string

const (
	ExpensePending  ExpenseStatus = "pending"
	ExpenseApproved ExpenseStatus = "approved"
	ExpenseRejected ExpenseStatus = "rejected"
)

// Valid reports whether s is one of the allowed status values.
func (s ExpenseStatus) Valid() bool {
	switch s {
	case ExpensePending, ExpenseApproved, ExpenseRejected:
		return true
	}
	return false
}

// Expense is a shared cost logged by a room member. Status transitions are
// manager-only; reverting to pending clears the approver fields.
type Expense struct {
	// ID is the unique identifier (UUID format).
	ID string `json:"id"`

	// Description is what the expense was for.
	Description string `json:"description"`

	// Amount is the non-negative cost.
	Amount float64 `json:"amount"`

	// Category is a free-form grouping label (e.g., "groceries").
	Category string `json:"category"`

	// Date is the Unix timestamp the expense occurred.
	Date int64 `json:"date"`

	// RoomID scopes the expense to a room.
	RoomID string `json:"roomId"`

	// AddedByID is the roommate who logged the expense; always equals the
	// acting identity at creation time.
	AddedByID string `json:"addedById"`

	// Status is pending until a manager approves or rejects.
	Status ExpenseStatus `json:"status"`

	// ApprovedByID and ApprovedAt are nil while the expense is pending.
	ApprovedByID *string `json:"approvedById"`
	ApprovedAt   *int64  `json:"approvedAt"`

	// AddedByName and ApprovedByName are denormalized display names joined
	// in at read time for list payloads.
	AddedByName    string `json:"addedByName,omitempty"`
	ApprovedByName string `json:"approvedByName,omitempty"`
}
