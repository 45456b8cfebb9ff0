package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("Invalid token")
	ErrMissingToken = errors.New("Authorization token required")
	// ErrMisconfigured is returned when no signing secret is configured.
	// It maps to a 500 "Server misconfigured" response rather than a crash;
	// token issuance and validation cannot proceed without the secret.
	ErrMisconfigured = errors.New("Server misconfigured")
)

// TokenManager issues and validates the bearer tokens handed out at login.
type TokenManager struct {
	secretKey     []byte
	tokenDuration time.Duration
}

// Claims is the token payload: subject = roommate ID, ver = the roommate's
// tokenVersion at issuance time. Tokens carrying a stale version are rejected
// during identity resolution, which is what makes the login-time version bump
// invalidate previously issued tokens.
type Claims struct {
	Version int `json:"ver"`
	jwt.RegisteredClaims
}

// NewTokenManager creates a token manager. An empty secret is tolerated at
// construction so the process can start; every issue/validate call will then
// fail with ErrMisconfigured.
func NewTokenManager(secretKey string, tokenDuration time.Duration) *TokenManager {
	return &TokenManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
	}
}

// Generate mints a signed token for the given roommate and token version.
func (m *TokenManager) Generate(roommateID string, tokenVersion int) (string, error) {
	if len(m.secretKey) == 0 {
		return "", ErrMisconfigured
	}

	claims := &Claims{
		Version: tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   roommateID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Validate parses and verifies a token, returning its claims. Malformed,
// expired and badly signed tokens all collapse into ErrInvalidToken; callers
// must not learn which check failed.
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	if len(m.secretKey) == 0 {
		return nil, ErrMisconfigured
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
