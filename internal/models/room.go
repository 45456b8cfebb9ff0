package models

// Room is a tenant grouping of roommates sharing expenses, joined via a
// unique invite code.
type Room struct {
	// ID is the unique identifier (UUID format).
	ID string `json:"id"`

	// Name is the display name of the room (e.g., "Flat 4B").
	Name string `json:"name"`

	// InviteCode is unique across all rooms, format ROOM- followed by six
	// uppercase base36 characters.
	InviteCode string `json:"inviteCode"`

	// CreatedAt is the Unix timestamp when the room was created.
	CreatedAt int64 `json:"createdAt"`
}
