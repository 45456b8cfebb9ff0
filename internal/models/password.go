package models

import "strings"

// PasswordFormat tags how a roommate's credential is stored.
type PasswordFormat int

const (
	// PasswordPlaintext is the legacy format: the raw password itself.
	// Verifying one triggers a lazy upgrade to bcrypt during login.
	PasswordPlaintext PasswordFormat = iota
	// PasswordBcrypt is a salted bcrypt hash.
	PasswordBcrypt
)

// StoredPassword is the tagged union of credential formats.
type StoredPassword struct {
	Format PasswordFormat
	Value  string
}

// ParseStoredPassword classifies a raw stored value by its bcrypt prefix.
// Anything without the $2a$/$2b$/$2y$ marker is legacy plaintext.
func ParseStoredPassword(raw string) StoredPassword {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(raw, prefix) {
			return StoredPassword{Format: PasswordBcrypt, Value: raw}
		}
	}
	return StoredPassword{Format: PasswordPlaintext, Value: raw}
}

// IsZero reports whether no credential is stored at all. Accounts without a
// password can never log in.
func (p StoredPassword) IsZero() bool {
	return p.Value == ""
}
