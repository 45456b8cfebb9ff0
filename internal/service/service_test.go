package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/roomledger/roomledger/internal/models"
	"github.com/roomledger/roomledger/internal/storage"
	"github.com/roomledger/roomledger/internal/storage/sqlite"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// identityOf reloads the request-scoped projection; call it again after any
// operation that changes room membership or the manager flag.
func identityOf(t *testing.T, store storage.Store, id string) *models.Identity {
	t.Helper()
	identity, err := store.GetIdentity(context.Background(), id)
	if err != nil {
		t.Fatalf("Failed to load identity: %v", err)
	}
	return identity
}

func registerTestRoommate(t *testing.T, svc *RoommateService, name, email string) *models.Roommate {
	t.Helper()
	roommate, err := svc.Register(context.Background(), name, email, "correct horse battery", "")
	if err != nil {
		t.Fatalf("Failed to register %s: %v", email, err)
	}
	return roommate
}
