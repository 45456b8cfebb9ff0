package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roomledger/roomledger/internal/auth"
	"github.com/roomledger/roomledger/internal/models"
	"github.com/roomledger/roomledger/internal/storage"
)

// RoommateService owns membership: self-service registration, the
// manager-gated add-member operation and member listing.
type RoommateService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewRoommateService creates a new membership service.
func NewRoommateService(store storage.Store, logger *slog.Logger) *RoommateService {
	return &RoommateService{store: store, logger: logger}
}

// Register creates a new account. With an invite code the roommate joins
// that room, becoming manager when the room has no members yet (the check
// and the insert are one transaction in the store). Without a code the
// roommate starts unaffiliated.
func (s *RoommateService) Register(ctx context.Context, name, email, password, inviteCode string) (*models.Roommate, error) {
	normalized := NormalizeEmail(email)

	// Fast-path duplicate check; the unique index is the real guard.
	if _, err := s.store.GetRoommateByEmail(ctx, normalized); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	roommate := &models.Roommate{
		Name:     strings.TrimSpace(name),
		Email:    normalized,
		Password: hashed,
	}

	if inviteCode != "" {
		room, err := s.store.GetRoomByInviteCode(ctx, inviteCode)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up room: %w", err)
		}
		err = s.store.CreateRoommateInRoom(ctx, roommate, room.ID)
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return nil, ErrEmailExists
		}
		if err != nil {
			return nil, fmt.Errorf("failed to register roommate: %w", err)
		}
	} else {
		err = s.store.CreateRoommate(ctx, roommate)
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return nil, ErrEmailExists
		}
		if err != nil {
			return nil, fmt.Errorf("failed to register roommate: %w", err)
		}
	}

	s.logger.Info("Roommate registered",
		"roommate_id", roommate.ID,
		"in_room", roommate.RoomID != nil,
		"is_manager", roommate.IsManager,
	)
	return roommate, nil
}

// AddMember assigns an existing roommate to the caller's room as a
// non-manager. Manager-only; the target is located by id or normalized
// email. A target already in any room, including this one, is a conflict.
func (s *RoommateService) AddMember(ctx context.Context, identity *models.Identity, targetID, targetEmail string) (*models.Roommate, error) {
	if identity.RoomID == nil {
		return nil, ErrNoRoom
	}
	if !identity.IsManager {
		return nil, ErrForbidden
	}

	var (
		target *models.Roommate
		err    error
	)
	if targetID != "" {
		target, err = s.store.GetRoommateByID(ctx, targetID)
	} else {
		target, err = s.store.GetRoommateByEmail(ctx, NormalizeEmail(targetEmail))
	}
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrRoommateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up roommate: %w", err)
	}

	if target.RoomID != nil {
		if *target.RoomID == *identity.RoomID {
			return nil, ErrAlreadyMember
		}
		return nil, ErrAlreadyInRoom
	}

	if err := s.store.AssignRoommateToRoom(ctx, target.ID, *identity.RoomID, false); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	target.RoomID = identity.RoomID
	target.IsManager = false

	s.logger.Info("Member added", "room_id", *identity.RoomID, "roommate_id", target.ID, "added_by", identity.ID)
	return target, nil
}

// ListMembers returns the members of the caller's own room, ordered by
// creation time ascending.
func (s *RoommateService) ListMembers(ctx context.Context, identity *models.Identity, roomID string) ([]*models.Roommate, error) {
	if !identity.InRoom(roomID) {
		return nil, ErrForbidden
	}
	members, err := s.store.ListRoommatesByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}
