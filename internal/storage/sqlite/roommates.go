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

const roommateColumns = "id, name, email, password, is_manager, room_id, token_version, created_at"

// CreateRoommate inserts a new roommate into the database.
func (s *SQLiteStore) CreateRoommate(ctx context.Context, roommate *models.Roommate) error {
	fillRoommateDefaults(roommate)

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO roommates ("+roommateColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		roommate.ID,
		roommate.Name,
		roommate.Email,
		roommate.Password.Value,
		roommate.IsManager,
		roommate.RoomID,
		roommate.TokenVersion,
		roommate.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create roommate: %w", mapConstraintErr(err))
	}
	return nil
}

// CreateRoommateInRoom inserts a new roommate into roomID. The member count
// and the insert share one transaction so two concurrent first registrations
// cannot both become manager.
func (s *SQLiteStore) CreateRoommateInRoom(ctx context.Context, roommate *models.Roommate, roomID string) error {
	fillRoommateDefaults(roommate)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var members int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM roommates WHERE room_id = ?", roomID,
	).Scan(&members); err != nil {
		return fmt.Errorf("failed to count room members: %w", err)
	}

	roommate.RoomID = &roomID
	roommate.IsManager = members == 0

	_, err = tx.ExecContext(ctx,
		"INSERT INTO roommates ("+roommateColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		roommate.ID,
		roommate.Name,
		roommate.Email,
		roommate.Password.Value,
		roommate.IsManager,
		roommate.RoomID,
		roommate.TokenVersion,
		roommate.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create roommate: %w", mapConstraintErr(err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetRoommateByID retrieves a roommate by their ID.
func (s *SQLiteStore) GetRoommateByID(ctx context.Context, id string) (*models.Roommate, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+roommateColumns+" FROM roommates WHERE id = ?", id)
	return scanRoommate(row)
}

// GetRoommateByEmail retrieves a roommate by their normalized email address.
func (s *SQLiteStore) GetRoommateByEmail(ctx context.Context, email string) (*models.Roommate, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+roommateColumns+" FROM roommates WHERE email = ?", email)
	return scanRoommate(row)
}

// GetIdentity loads the request-scoped projection of a roommate. The
// password column is deliberately not selected.
func (s *SQLiteStore) GetIdentity(ctx context.Context, id string) (*models.Identity, error) {
	identity := &models.Identity{}
	var roomID sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, is_manager, room_id, token_version FROM roommates WHERE id = ?", id,
	).Scan(&identity.ID, &identity.Email, &identity.IsManager, &roomID, &identity.TokenVersion)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}
	if roomID.Valid {
		identity.RoomID = &roomID.String
	}
	return identity, nil
}

// ListRoommatesByRoom returns the members of a room ordered by creation time
// ascending.
func (s *SQLiteStore) ListRoommatesByRoom(ctx context.Context, roomID string) ([]*models.Roommate, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+roommateColumns+" FROM roommates WHERE room_id = ? ORDER BY created_at ASC, rowid ASC",
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list roommates: %w", err)
	}
	defer rows.Close()

	roommates := []*models.Roommate{}
	for rows.Next() {
		roommate, err := scanRoommate(rows)
		if err != nil {
			return nil, err
		}
		roommates = append(roommates, roommate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roommates: %w", err)
	}
	return roommates, nil
}

// AssignRoommateToRoom sets the room affiliation and manager flag.
func (s *SQLiteStore) AssignRoommateToRoom(ctx context.Context, roommateID, roomID string, isManager bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE roommates SET room_id = ?, is_manager = ? WHERE id = ?",
		roomID, isManager, roommateID,
	)
	if err != nil {
		return fmt.Errorf("failed to assign roommate to room: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// UpdateRoommateCredentials bumps the token version and optionally replaces
// the stored password in a single update.
func (s *SQLiteStore) UpdateRoommateCredentials(ctx context.Context, id string, tokenVersion int, password *models.StoredPassword) error {
	var (
		res sql.Result
		err error
	)
	if password != nil {
		res, err = s.db.ExecContext(ctx,
			"UPDATE roommates SET token_version = ?, password = ? WHERE id = ?",
			tokenVersion, password.Value, id,
		)
	} else {
		res, err = s.db.ExecContext(ctx,
			"UPDATE roommates SET token_version = ? WHERE id = ?",
			tokenVersion, id,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to update roommate credentials: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRoommate(row scanner) (*models.Roommate, error) {
	roommate := &models.Roommate{}
	var (
		rawPassword string
		roomID      sql.NullString
	)
	err := row.Scan(
		&roommate.ID,
		&roommate.Name,
		&roommate.Email,
		&rawPassword,
		&roommate.IsManager,
		&roomID,
		&roommate.TokenVersion,
		&roommate.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan roommate: %w", err)
	}
	roommate.Password = models.ParseStoredPassword(rawPassword)
	if roomID.Valid {
		roommate.RoomID = &roomID.String
	}
	return roommate, nil
}

func fillRoommateDefaults(roommate *models.Roommate) {
	if roommate.ID == "" {
		roommate.ID = uuid.New().String()
	}
	if roommate.CreatedAt == 0 {
		roommate.CreatedAt = time.Now().Unix()
	}
}
