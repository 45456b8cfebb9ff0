package models

// Roommate is a registered account. A roommate may be unaffiliated
// (RoomID nil) or belong to exactly one room.
type Roommate struct {
	// ID is the unique identifier (UUID format).
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// Email is the normalized (trimmed, lowercased) address, unique across
	// all roommates regardless of room.
	Email string `json:"email"`

	// Password is never serialized; response payloads carry every other
	// field but strip the credential.
	Password StoredPassword `json:"-"`

	// IsManager marks the roommate who administers their room. The first
	// member of a room becomes its manager; the schema does not hard-enforce
	// singularity.
	IsManager bool `json:"isManager"`

	// RoomID is the room this roommate belongs to, nil when unaffiliated.
	RoomID *string `json:"roomId"`

	// TokenVersion is a monotonic counter, incremented on every successful
	// login. Tokens embed the version at issuance; stale versions are
	// rejected, which invalidates all previously issued tokens.
	TokenVersion int `json:"tokenVersion"`

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64 `json:"createdAt"`
}

// Identity is the request-scoped projection of a roommate resolved from a
// bearer token. It deliberately excludes the password and carries only what
// authorization checks need.
type Identity struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	IsManager    bool    `json:"isManager"`
	RoomID       *string `json:"roomId"`
	TokenVersion int     `json:"-"`
}

// InRoom reports whether the identity belongs to the given room.
func (i *Identity) InRoom(roomID string) bool {
	return i.RoomID != nil && *i.RoomID == roomID
}
