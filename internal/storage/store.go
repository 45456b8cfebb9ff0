// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/roomledger/roomledger/internal/models"
)

// Sentinel errors surfaced by Store implementations. Uniqueness is enforced
// by the store itself (unique indexes); application-level pre-checks are only
// a fast path, and insert failures on constraint violations map to the same
// duplicate errors.
var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateEmail      = errors.New("email already exists")
	ErrDuplicateInviteCode = errors.New("invite code already exists")
)

// Store defines the persistence operations for roommates, rooms and
// expenses. Multi-record operations (CreateRoomWithManager,
// CreateRoommateInRoom, DeleteRoomCascade) are atomic: either every write
// lands or none does.
type Store interface {
	// CreateRoommate persists a new roommate, generating ID and CreatedAt
	// when unset.
	CreateRoommate(ctx context.Context, roommate *models.Roommate) error

	// CreateRoommateInRoom persists a new roommate as a member of roomID.
	// The first-member check and the insert run in one transaction: the
	// roommate becomes the room's manager if and only if the room has no
	// members at insert time. IsManager and RoomID are populated on return.
	CreateRoommateInRoom(ctx context.Context, roommate *models.Roommate, roomID string) error

	// GetRoommateByID retrieves a roommate by ID, ErrNotFound if absent.
	GetRoommateByID(ctx context.Context, id string) (*models.Roommate, error)

	// GetRoommateByEmail retrieves a roommate by normalized email.
	GetRoommateByEmail(ctx context.Context, email string) (*models.Roommate, error)

	// GetIdentity loads the request-scoped projection of a roommate:
	// id, email, isManager, roomId and tokenVersion. The password is never
	// read.
	GetIdentity(ctx context.Context, id string) (*models.Identity, error)

	// ListRoommatesByRoom returns a room's members ordered by creation time
	// ascending.
	ListRoommatesByRoom(ctx context.Context, roomID string) ([]*models.Roommate, error)

	// AssignRoommateToRoom sets a roommate's room affiliation and manager
	// flag in a single update.
	AssignRoommateToRoom(ctx context.Context, roommateID, roomID string, isManager bool) error

	// UpdateRoommateCredentials atomically sets the token version and, when
	// password is non-nil, replaces the stored credential. Used by the login
	// protocol for the version bump plus lazy hash upgrade.
	UpdateRoommateCredentials(ctx context.Context, id string, tokenVersion int, password *models.StoredPassword) error

	// CreateRoomWithManager creates the room and promotes managerID to its
	// manager (room assignment + isManager) in one transaction.
	CreateRoomWithManager(ctx context.Context, room *models.Room, managerID string) error

	// GetRoom retrieves a room by ID, ErrNotFound if absent.
	GetRoom(ctx context.Context, id string) (*models.Room, error)

	// GetRoomByInviteCode retrieves a room by exact, case-sensitive invite
	// code match.
	GetRoomByInviteCode(ctx context.Context, code string) (*models.Room, error)

	// UpdateRoom persists the room's name and invite code.
	UpdateRoom(ctx context.Context, room *models.Room) error

	// DeleteRoomCascade deletes the room's expenses, then its roommates,
	// then the room itself, in one transaction.
	DeleteRoomCascade(ctx context.Context, roomID string) error

	// CreateExpense persists a new expense, generating ID when unset.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense by ID, ErrNotFound if absent.
	GetExpense(ctx context.Context, id string) (*models.Expense, error)

	// ListExpensesByRoom returns a room's expenses ordered by date
	// descending, with AddedByName/ApprovedByName populated.
	ListExpensesByRoom(ctx context.Context, roomID string) ([]*models.Expense, error)

	// UpdateExpenseStatus sets the status and approver fields.
	UpdateExpenseStatus(ctx context.Context, id string, status models.ExpenseStatus, approvedByID *string, approvedAt *int64) error

	// Close releases any resources held by the store.
	Close() error
}
