package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roomledger/roomledger/internal/models"
	"github.com/roomledger/roomledger/internal/storage"
)

// CreateRoomWithManager creates the room and promotes the creator to manager
// in one transaction. A crash between the two writes can never leave a
// manager-less room or a roomless manager.
func (s *SQLiteStore) CreateRoomWithManager(ctx context.Context, room *models.Room, managerID string) error {
	if room.ID == "" {
		room.ID = uuid.New().String()
	}
	if room.CreatedAt == 0 {
		room.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO rooms (id, name, invite_code, created_at) VALUES (?, ?, ?, ?)",
		room.ID, room.Name, room.InviteCode, room.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert room: %w", mapConstraintErr(err))
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE roommates SET room_id = ?, is_manager = 1 WHERE id = ?",
		room.ID, managerID,
	)
	if err != nil {
		return fmt.Errorf("failed to promote manager: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetRoom retrieves a room by ID.
func (s *SQLiteStore) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	return s.getRoom(ctx, "SELECT id, name, invite_code, created_at FROM rooms WHERE id = ?", id)
}

// GetRoomByInviteCode retrieves a room by exact invite code. SQLite TEXT
// comparison is case-sensitive, which is what the invite-code contract wants.
func (s *SQLiteStore) GetRoomByInviteCode(ctx context.Context, code string) (*models.Room, error) {
	return s.getRoom(ctx, "SELECT id, name, invite_code, created_at FROM rooms WHERE invite_code = ?", code)
}

func (s *SQLiteStore) getRoom(ctx context.Context, query string, arg any) (*models.Room, error) {
	room := &models.Room{}
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&room.ID, &room.Name, &room.InviteCode, &room.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return room, nil
}

// UpdateRoom persists the room's name and invite code.
func (s *SQLiteStore) UpdateRoom(ctx context.Context, room *models.Room) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE rooms SET name = ?, invite_code = ? WHERE id = ?",
		room.Name, room.InviteCode, room.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update room: %w", mapConstraintErr(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteRoomCascade removes the room's expenses, then its roommates, then
// the room, all in one transaction. Dependency order matters: expenses
// reference roommates which reference the room.
func (s *SQLiteStore) DeleteRoomCascade(ctx context.Context, roomID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE room_id = ?", roomID); err != nil {
		return fmt.Errorf("failed to delete room expenses: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM roommates WHERE room_id = ?", roomID); err != nil {
		return fmt.Errorf("failed to delete room roommates: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", roomID)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
