package service

import "errors"

// Sentinel business-rule errors. The HTTP layer maps these onto status codes
// with errors.Is; the messages are the client-facing contract, so changing
// one is an API change.
var (
	// 400
	ErrEmailExists      = errors.New("Email already exists")
	ErrInviteCodeExists = errors.New("Invite code already exists")
	ErrNoRoom           = errors.New("Not in a room")

	// 403
	ErrForbidden     = errors.New("Forbidden")
	ErrEmailRequired = errors.New("Email required")

	// 404
	ErrRoomNotFound     = errors.New("Room not found")
	ErrRoommateNotFound = errors.New("Roommate not found")
	ErrExpenseNotFound  = errors.New("Expense not found")

	// 409
	ErrAlreadyInRoom = errors.New("Already in a room")
	ErrAlreadyMember = errors.New("Already a member of this room")

	// 500; only reachable if five random codes in a row collide.
	ErrInviteCodeExhausted = errors.New("Failed to generate invite code")
)
