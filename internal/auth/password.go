package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/roomledger/roomledger/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("Invalid credentials")
)

// hashCost is the bcrypt work factor used for new and lazily upgraded hashes.
const hashCost = 12

// VerifyPassword checks a submitted password against the stored credential.
// Bcrypt values use the algorithm's constant-time comparison; legacy
// plaintext values compare by exact equality and report needsUpgrade so the
// caller can replace them with a fresh hash before continuing.
func VerifyPassword(submitted string, stored models.StoredPassword) (matched, needsUpgrade bool) {
	switch stored.Format {
	case models.PasswordBcrypt:
		err := bcrypt.CompareHashAndPassword([]byte(stored.Value), []byte(submitted))
		return err == nil, false
	case models.PasswordPlaintext:
		if stored.Value == submitted {
			return true, true
		}
		return false, false
	}
	return false, false
}

// HashPassword produces a salted bcrypt hash of the given password.
func HashPassword(password string) (models.StoredPassword, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return models.StoredPassword{}, fmt.Errorf("failed to hash password: %w", err)
	}
	return models.StoredPassword{Format: models.PasswordBcrypt, Value: string(hashed)}, nil
}
