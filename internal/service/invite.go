package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/roomledger/roomledger/internal/storage"
)

const (
	inviteCodePrefix   = "ROOM-"
	inviteCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	inviteCodeLength   = 6
	inviteCodeAttempts = 5
)

// generateInviteCode produces a code of the form ROOM-XXXXXX where each X is
// an uppercase base36 character drawn from crypto/rand.
func generateInviteCode() (string, error) {
	buf := make([]byte, inviteCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = inviteCodeAlphabet[int(b)%len(inviteCodeAlphabet)]
	}
	return inviteCodePrefix + string(buf), nil
}

// uniqueInviteCode generates codes until one is unused, giving up after a
// fixed number of attempts. With 36^6 possible codes, exhaustion is a
// theoretical failure path only.
func uniqueInviteCode(ctx context.Context, store storage.Store) (string, error) {
	for i := 0; i < inviteCodeAttempts; i++ {
		code, err := generateInviteCode()
		if err != nil {
			return "", err
		}
		_, err = store.GetRoomByInviteCode(ctx, code)
		if errors.Is(err, storage.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", ErrInviteCodeExhausted
}
