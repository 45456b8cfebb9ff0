package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roomledger/roomledger/internal/models"
	"github.com/roomledger/roomledger/internal/storage"
)

// RoomService owns the room lifecycle: creation, joining, updates, invite
// code regeneration and the deletion cascade.
type RoomService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewRoomService creates a new room lifecycle service.
func NewRoomService(store storage.Store, logger *slog.Logger) *RoomService {
	return &RoomService{store: store, logger: logger}
}

// Create creates a room and promotes the caller to its manager atomically.
// A caller-supplied invite code must not already be in use; otherwise one is
// generated. Resolved identities always carry an email, but the invariant is
// checked anyway.
func (s *RoomService) Create(ctx context.Context, identity *models.Identity, name, inviteCode string) (*models.Room, error) {
	if identity.Email == "" {
		return nil, ErrEmailRequired
	}

	code := strings.TrimSpace(inviteCode)
	if code != "" {
		_, err := s.store.GetRoomByInviteCode(ctx, code)
		if err == nil {
			return nil, ErrInviteCodeExists
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("failed to check invite code: %w", err)
		}
	} else {
		var err error
		code, err = uniqueInviteCode(ctx, s.store)
		if err != nil {
			return nil, err
		}
	}

	room := &models.Room{Name: name, InviteCode: code}
	if err := s.store.CreateRoomWithManager(ctx, room, identity.ID); err != nil {
		if errors.Is(err, storage.ErrDuplicateInviteCode) {
			return nil, ErrInviteCodeExists
		}
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	s.logger.Info("Room created", "room_id", room.ID, "manager_id", identity.ID)
	return room, nil
}

// Join adds the caller to the room matching the invite code as a non-manager
// member. Joining the room the caller already belongs to is a no-op returning
// the current state; belonging to a different room is a conflict.
func (s *RoomService) Join(ctx context.Context, identity *models.Identity, inviteCode string) (*models.Room, error) {
	room, err := s.store.GetRoomByInviteCode(ctx, inviteCode)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up room: %w", err)
	}

	if identity.RoomID != nil {
		if *identity.RoomID == room.ID {
			return room, nil
		}
		return nil, ErrAlreadyInRoom
	}

	if err := s.store.AssignRoommateToRoom(ctx, identity.ID, room.ID, false); err != nil {
		return nil, fmt.Errorf("failed to join room: %w", err)
	}

	s.logger.Info("Roommate joined room", "room_id", room.ID, "roommate_id", identity.ID)
	return room, nil
}

// Get fetches a room with its member list. Only members of that exact room
// may read it; there is no admin override.
func (s *RoomService) Get(ctx context.Context, identity *models.Identity, roomID string) (*models.Room, []*models.Roommate, error) {
	if !identity.InRoom(roomID) {
		return nil, nil, ErrForbidden
	}

	room, err := s.store.GetRoom(ctx, roomID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get room: %w", err)
	}

	members, err := s.store.ListRoommatesByRoom(ctx, roomID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list members: %w", err)
	}
	return room, members, nil
}

// List returns the rooms visible to the caller: their own room, or nothing
// when unaffiliated.
func (s *RoomService) List(ctx context.Context, identity *models.Identity) ([]*models.Room, error) {
	if identity.RoomID == nil {
		return []*models.Room{}, nil
	}
	room, err := s.store.GetRoom(ctx, *identity.RoomID)
	if errors.Is(err, storage.ErrNotFound) {
		return []*models.Room{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return []*models.Room{room}, nil
}

// Update patches the room's name and/or invite code, manager-only. A new
// invite code only conflicts when a *different* room holds it; re-submitting
// the room's own code is fine. Callers supply nil for fields to leave alone.
func (s *RoomService) Update(ctx context.Context, identity *models.Identity, roomID string, name, inviteCode *string) (*models.Room, error) {
	if !identity.InRoom(roomID) || !identity.IsManager {
		return nil, ErrForbidden
	}

	room, err := s.store.GetRoom(ctx, roomID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	if name != nil {
		room.Name = strings.TrimSpace(*name)
	}
	if inviteCode != nil {
		code := strings.TrimSpace(*inviteCode)
		existing, err := s.store.GetRoomByInviteCode(ctx, code)
		if err == nil && existing.ID != roomID {
			return nil, ErrInviteCodeExists
		}
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("failed to check invite code: %w", err)
		}
		room.InviteCode = code
	}

	if err := s.store.UpdateRoom(ctx, room); err != nil {
		if errors.Is(err, storage.ErrDuplicateInviteCode) {
			return nil, ErrInviteCodeExists
		}
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	s.logger.Info("Room updated", "room_id", roomID)
	return room, nil
}

// RegenerateInviteCode replaces the room's invite code with a fresh random
// one, manager-only.
func (s *RoomService) RegenerateInviteCode(ctx context.Context, identity *models.Identity, roomID string) (*models.Room, error) {
	if !identity.InRoom(roomID) || !identity.IsManager {
		return nil, ErrForbidden
	}

	room, err := s.store.GetRoom(ctx, roomID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	code, err := uniqueInviteCode(ctx, s.store)
	if err != nil {
		return nil, err
	}
	room.InviteCode = code

	if err := s.store.UpdateRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	s.logger.Info("Invite code regenerated", "room_id", roomID)
	return room, nil
}

// Delete removes the room and everything scoped to it (expenses first, then
// roommates, then the room) in one transaction, manager-only. The caller is
// deleted along with the rest of the membership.
func (s *RoomService) Delete(ctx context.Context, identity *models.Identity, roomID string) error {
	if !identity.InRoom(roomID) || !identity.IsManager {
		return ErrForbidden
	}

	if _, err := s.store.GetRoom(ctx, roomID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrRoomNotFound
		}
		return fmt.Errorf("failed to get room: %w", err)
	}

	if err := s.store.DeleteRoomCascade(ctx, roomID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrRoomNotFound
		}
		return fmt.Errorf("failed to delete room: %w", err)
	}

	s.logger.Info("Room deleted", "room_id", roomID, "deleted_by", identity.ID)
	return nil
}
