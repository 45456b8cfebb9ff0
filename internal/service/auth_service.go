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

// AuthService implements the login protocol: credential verification, the
// token-version bump and the lazy password upgrade.
type AuthService struct {
	store  storage.Store
	tokens *auth.TokenManager
	logger *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(store storage.Store, tokens *auth.TokenManager, logger *slog.Logger) *AuthService {
	return &AuthService{store: store, tokens: tokens, logger: logger}
}

// NormalizeEmail applies the canonical email normalization: trim, lowercase.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login verifies the credentials and, on success, bumps the roommate's token
// version (invalidating all previously issued tokens), upgrades a legacy
// plaintext credential to bcrypt in the same store update, and issues a fresh
// token carrying the new version. Absent accounts, accounts without a stored
// password and wrong passwords all fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.Roommate, error) {
	roommate, err := s.store.GetRoommateByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil, auth.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to look up roommate: %w", err)
	}
	if roommate.Password.IsZero() {
		return "", nil, auth.ErrInvalidCredentials
	}

	matched, needsUpgrade := auth.VerifyPassword(password, roommate.Password)
	if !matched {
		return "", nil, auth.ErrInvalidCredentials
	}

	var upgraded *models.StoredPassword
	if needsUpgrade {
		hashed, err := auth.HashPassword(password)
		if err != nil {
			return "", nil, err
		}
		upgraded = &hashed
	}

	newVersion := roommate.TokenVersion + 1
	if err := s.store.UpdateRoommateCredentials(ctx, roommate.ID, newVersion, upgraded); err != nil {
		return "", nil, fmt.Errorf("failed to update credentials: %w", err)
	}
	roommate.TokenVersion = newVersion
	if upgraded != nil {
		roommate.Password = *upgraded
		s.logger.Info("Upgraded legacy password", "roommate_id", roommate.ID)
	}

	token, err := s.tokens.Generate(roommate.ID, newVersion)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info("Login successful", "roommate_id", roommate.ID, "token_version", newVersion)
	return token, roommate, nil
}
