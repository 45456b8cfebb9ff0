package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/roomledger/roomledger/internal/auth"
	"github.com/roomledger/roomledger/internal/models"
	"github.com/roomledger/roomledger/internal/storage/sqlite"
)

// testAPI is a running server plus helpers for driving it over HTTP.
type testAPI struct {
	t      *testing.T
	server *httptest.Server
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	ts := httptest.NewServer(NewServer(store, tokens, logger).Handler())
	t.Cleanup(ts.Close)

	return &testAPI{t: t, server: ts}
}

// do issues a request and decodes the JSON response into out (skipped when
// out is nil). token may be empty for public endpoints.
func (a *testAPI) do(method, path, token string, body any, out any) int {
	a.t.Helper()

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("Failed to encode request body: %v", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reqBody)
	if err != nil {
		a.t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.server.Client().Do(req)
	if err != nil {
		a.t.Fatalf("Request %s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			a.t.Fatalf("Failed to decode response of %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (a *testAPI) register(name, email string) *models.Roommate {
	a.t.Helper()
	var roommate models.Roommate
	status := a.do("POST", "/roommates/register", "", map[string]string{
		"name": name, "email": email, "password": "correct horse battery",
	}, &roommate)
	if status != http.StatusOK {
		a.t.Fatalf("Register %s returned %d", email, status)
	}
	return &roommate
}

func (a *testAPI) login(email string) string {
	a.t.Helper()
	var resp struct {
		Token string `json:"token"`
	}
	status := a.do("POST", "/login", "", map[string]string{
		"email": email, "password": "correct horse battery",
	}, &resp)
	if status != http.StatusOK {
		a.t.Fatalf("Login %s returned %d", email, status)
	}
	return resp.Token
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	var resp map[string]string
	if status := api.do("GET", "/health", "", nil, &resp); status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if resp["status"] != "ok" {
		t.Errorf("Expected status ok, got %q", resp["status"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	api := newTestAPI(t)
	resp, err := api.server.Client().Get(api.server.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
}

func TestAuthenticationRequired(t *testing.T) {
	api := newTestAPI(t)

	t.Run("missing token", func(t *testing.T) {
		var resp map[string]string
		if status := api.do("GET", "/rooms", "", nil, &resp); status != http.StatusUnauthorized {
			t.Fatalf("Expected 401, got %d", status)
		}
		if resp["error"] != "Authorization token required" {
			t.Errorf("Unexpected error message %q", resp["error"])
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		var resp map[string]string
		if status := api.do("GET", "/rooms", "not.a.token", nil, &resp); status != http.StatusUnauthorized {
			t.Fatalf("Expected 401, got %d", status)
		}
		if resp["error"] != "Invalid token" {
			t.Errorf("Unexpected error message %q", resp["error"])
		}
	})

	t.Run("token invalidated by a later login", func(t *testing.T) {
		api.register("Alice", "alice@example.com")
		stale := api.login("alice@example.com")
		api.login("alice@example.com")

		if status := api.do("GET", "/rooms", stale, nil, nil); status != http.StatusUnauthorized {
			t.Fatalf("Expected 401 for stale token, got %d", status)
		}
	})
}

func TestLoginEndpoint(t *testing.T) {
	api := newTestAPI(t)
	api.register("Alice", "alice@example.com")

	t.Run("missing fields", func(t *testing.T) {
		status := api.do("POST", "/login", "", map[string]string{"email": "alice@example.com"}, nil)
		if status != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d", status)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		var resp map[string]string
		status := api.do("POST", "/login", "", map[string]string{
			"email": "alice@example.com", "password": "wrong",
		}, &resp)
		if status != http.StatusUnauthorized {
			t.Fatalf("Expected 401, got %d", status)
		}
		if resp["error"] != "Invalid credentials" {
			t.Errorf("Unexpected error message %q", resp["error"])
		}
	})

	t.Run("success returns token and user", func(t *testing.T) {
		var resp struct {
			Token string           `json:"token"`
			User  *models.Roommate `json:"user"`
		}
		status := api.do("POST", "/login", "", map[string]string{
			"email": "alice@example.com", "password": "correct horse battery",
		}, &resp)
		if status != http.StatusOK {
			t.Fatalf("Expected 200, got %d", status)
		}
		if resp.Token == "" {
			t.Error("Expected a token")
		}
		if resp.User == nil || resp.User.Email != "alice@example.com" {
			t.Error("Expected the user payload")
		}
	})
}

func TestRegisterEndpoint(t *testing.T) {
	api := newTestAPI(t)

	t.Run("duplicate email is a 400", func(t *testing.T) {
		api.register("Alice", "alice@example.com")
		var resp map[string]string
		status := api.do("POST", "/roommates/register", "", map[string]string{
			"name": "Alice Again", "email": "ALICE@example.com", "password": "x",
		}, &resp)
		if status != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d", status)
		}
		if resp["error"] != "Email already exists" {
			t.Errorf("Unexpected error message %q", resp["error"])
		}
	})

	t.Run("unknown invite code is a 404", func(t *testing.T) {
		status := api.do("POST", "/roommates/register", "", map[string]string{
			"name": "Bob", "email": "bob@example.com", "password": "x", "inviteCode": "ROOM-ZZZZZZ",
		}, nil)
		if status != http.StatusNotFound {
			t.Fatalf("Expected 404, got %d", status)
		}
	})

	t.Run("password is never serialized", func(t *testing.T) {
		var raw map[string]any
		status := api.do("POST", "/roommates/register", "", map[string]string{
			"name": "Carol", "email": "carol@example.com", "password": "hidden",
		}, &raw)
		if status != http.StatusOK {
			t.Fatalf("Expected 200, got %d", status)
		}
		if _, present := raw["password"]; present {
			t.Error("Password must not appear in response payloads")
		}
	})
}

func TestRoomLifecycle(t *testing.T) {
	api := newTestAPI(t)

	api.register("Alice", "alice@example.com")
	aliceToken := api.login("alice@example.com")

	var room models.Room
	if status := api.do("POST", "/rooms", aliceToken, map[string]string{"name": "The Loft"}, &room); status != http.StatusOK {
		t.Fatalf("Create room returned %d", status)
	}
	if room.InviteCode == "" {
		t.Fatal("Expected a generated invite code")
	}

	api.register("Bob", "bob@example.com")
	bobToken := api.login("bob@example.com")

	t.Run("join by invite code", func(t *testing.T) {
		var joined models.Room
		status := api.do("POST", "/rooms/join", bobToken, map[string]string{"inviteCode": room.InviteCode}, &joined)
		if status != http.StatusOK {
			t.Fatalf("Join returned %d", status)
		}
		if joined.ID != room.ID {
			t.Errorf("Expected room %s, got %s", room.ID, joined.ID)
		}
	})

	t.Run("get returns room with roster", func(t *testing.T) {
		var resp struct {
			models.Room
			Roommates []*models.Roommate `json:"roommates"`
		}
		status := api.do("GET", "/rooms/"+room.ID, aliceToken, nil, &resp)
		if status != http.StatusOK {
			t.Fatalf("Get room returned %d", status)
		}
		if len(resp.Roommates) != 2 {
			t.Errorf("Expected 2 roommates, got %d", len(resp.Roommates))
		}
	})

	t.Run("outsiders get a 403", func(t *testing.T) {
		api.register("Mallory", "mallory@example.com")
		malloryToken := api.login("mallory@example.com")
		if status := api.do("GET", "/rooms/"+room.ID, malloryToken, nil, nil); status != http.StatusForbidden {
			t.Fatalf("Expected 403, got %d", status)
		}
	})

	t.Run("non-manager updates get a 403", func(t *testing.T) {
		status := api.do("PATCH", "/rooms/"+room.ID, bobToken, map[string]string{"name": "Hijacked"}, nil)
		if status != http.StatusForbidden {
			t.Fatalf("Expected 403, got %d", status)
		}
	})

	t.Run("manager renames the room", func(t *testing.T) {
		var updated models.Room
		status := api.do("PATCH", "/rooms/"+room.ID, aliceToken, map[string]string{"name": "The Penthouse"}, &updated)
		if status != http.StatusOK {
			t.Fatalf("Update returned %d", status)
		}
		if updated.Name != "The Penthouse" {
			t.Errorf("Expected new name, got %q", updated.Name)
		}
	})

	t.Run("empty patch is a 400", func(t *testing.T) {
		status := api.do("PATCH", "/rooms/"+room.ID, aliceToken, map[string]string{}, nil)
		if status != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d", status)
		}
	})

	t.Run("manager regenerates the invite code", func(t *testing.T) {
		var updated models.Room
		status := api.do("POST", "/rooms/"+room.ID+"/invite-code", aliceToken, nil, &updated)
		if status != http.StatusOK {
			t.Fatalf("Regenerate returned %d", status)
		}
		if updated.InviteCode == room.InviteCode {
			t.Error("Expected a fresh invite code")
		}
	})

	t.Run("joining a second room is a 409", func(t *testing.T) {
		api.register("Eve", "eve@example.com")
		eveToken := api.login("eve@example.com")
		var other models.Room
		if status := api.do("POST", "/rooms", eveToken, map[string]string{"name": "Elsewhere"}, &other); status != http.StatusOK {
			t.Fatalf("Create room returned %d", status)
		}
		if status := api.do("POST", "/rooms/join", bobToken, map[string]string{"inviteCode": other.InviteCode}, nil); status != http.StatusConflict {
			t.Fatalf("Expected 409, got %d", status)
		}
	})

	t.Run("delete cascades and invalidates members", func(t *testing.T) {
		if status := api.do("DELETE", "/rooms/"+room.ID, bobToken, nil, nil); status != http.StatusForbidden {
			t.Fatalf("Expected 403 for non-manager delete, got %d", status)
		}
		if status := api.do("DELETE", "/rooms/"+room.ID, aliceToken, nil, nil); status != http.StatusOK {
			t.Fatalf("Delete returned %d", status)
		}
		// Both accounts went down with the room.
		if status := api.do("GET", "/rooms", bobToken, nil, nil); status != http.StatusUnauthorized {
			t.Fatalf("Expected 401 for deleted member, got %d", status)
		}
	})
}

func TestAddMemberEndpoint(t *testing.T) {
	api := newTestAPI(t)

	api.register("Alice", "alice@example.com")
	aliceToken := api.login("alice@example.com")
	var room models.Room
	if status := api.do("POST", "/rooms", aliceToken, map[string]string{"name": "Flat 5"}, &room); status != http.StatusOK {
		t.Fatalf("Create room returned %d", status)
	}
	api.register("Bob", "bob@example.com")

	t.Run("manager adds by email", func(t *testing.T) {
		var added models.Roommate
		status := api.do("POST", "/roommates/add-member", aliceToken, map[string]string{"email": "bob@example.com"}, &added)
		if status != http.StatusOK {
			t.Fatalf("Add member returned %d", status)
		}
		if added.RoomID == nil || *added.RoomID != room.ID {
			t.Error("Expected target to be in the room")
		}
	})

	t.Run("adding the same member again is a 409", func(t *testing.T) {
		status := api.do("POST", "/roommates/add-member", aliceToken, map[string]string{"email": "bob@example.com"}, nil)
		if status != http.StatusConflict {
			t.Fatalf("Expected 409, got %d", status)
		}
	})

	t.Run("unknown target is a 404", func(t *testing.T) {
		status := api.do("POST", "/roommates/add-member", aliceToken, map[string]string{"email": "missing@example.com"}, nil)
		if status != http.StatusNotFound {
			t.Fatalf("Expected 404, got %d", status)
		}
	})

	t.Run("roster lists both members", func(t *testing.T) {
		var members []*models.Roommate
		status := api.do("GET", "/rooms/"+room.ID+"/roommates", aliceToken, nil, &members)
		if status != http.StatusOK {
			t.Fatalf("List roommates returned %d", status)
		}
		if len(members) != 2 {
			t.Errorf("Expected 2 members, got %d", len(members))
		}
	})
}

func TestExpenseEndpoints(t *testing.T) {
	api := newTestAPI(t)

	alice := api.register("Alice", "alice@example.com")
	aliceToken := api.login("alice@example.com")
	var room models.Room
	if status := api.do("POST", "/rooms", aliceToken, map[string]string{"name": "Flat 9"}, &room); status != http.StatusOK {
		t.Fatalf("Create room returned %d", status)
	}

	newExpense := func(desc string, amount float64) map[string]any {
		return map[string]any{
			"description": desc,
			"amount":      amount,
			"category":    "food",
			"date":        time.Now().Format(time.RFC3339),
			"addedById":   alice.ID,
		}
	}

	t.Run("missing fields are a 400", func(t *testing.T) {
		status := api.do("POST", "/rooms/"+room.ID+"/expenses", aliceToken, map[string]any{"description": "x"}, nil)
		if status != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d", status)
		}
	})

	t.Run("negative amount is a 400", func(t *testing.T) {
		status := api.do("POST", "/rooms/"+room.ID+"/expenses", aliceToken, newExpense("refund", -5), nil)
		if status != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d", status)
		}
	})

	t.Run("bad date format is a 400", func(t *testing.T) {
		body := newExpense("groceries", 10)
		body["date"] = "2026-08-31"
		status := api.do("POST", "/rooms/"+room.ID+"/expenses", aliceToken, body, nil)
		if status != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d", status)
		}
	})

	var expense models.Expense
	t.Run("create and list", func(t *testing.T) {
		status := api.do("POST", "/rooms/"+room.ID+"/expenses", aliceToken, newExpense("groceries", 42.50), &expense)
		if status != http.StatusOK {
			t.Fatalf("Create expense returned %d", status)
		}
		if expense.Status != models.ExpensePending {
			t.Errorf("Expected pending, got %q", expense.Status)
		}

		var expenses []*models.Expense
		if status := api.do("GET", "/rooms/"+room.ID+"/expenses", aliceToken, nil, &expenses); status != http.StatusOK {
			t.Fatalf("List expenses returned %d", status)
		}
		if len(expenses) != 1 {
			t.Errorf("Expected 1 expense, got %d", len(expenses))
		}
	})

	t.Run("invalid status value is a 400", func(t *testing.T) {
		status := api.do("POST", "/expenses/"+expense.ID+"/status", aliceToken, map[string]string{"status": "maybe"}, nil)
		if status != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d", status)
		}
	})

	t.Run("manager approves", func(t *testing.T) {
		var updated models.Expense
		status := api.do("POST", "/expenses/"+expense.ID+"/status", aliceToken, map[string]string{"status": "approved"}, &updated)
		if status != http.StatusOK {
			t.Fatalf("Update status returned %d", status)
		}
		if updated.Status != models.ExpenseApproved {
			t.Errorf("Expected approved, got %q", updated.Status)
		}
		if updated.ApprovedByID == nil || *updated.ApprovedByID != alice.ID {
			t.Error("Expected the approver to be stamped")
		}
	})

	t.Run("unknown expense is a 404", func(t *testing.T) {
		status := api.do("POST", "/expenses/no-such-id/status", aliceToken, map[string]string{"status": "approved"}, nil)
		if status != http.StatusNotFound {
			t.Fatalf("Expected 404, got %d", status)
		}
	})

	t.Run("summary aggregates the room", func(t *testing.T) {
		var summary struct {
			Total         float64 `json:"total"`
			ApprovedTotal float64 `json:"approvedTotal"`
			EqualShare    float64 `json:"equalShare"`
		}
		status := api.do("GET", "/rooms/"+room.ID+"/expenses/summary", aliceToken, nil, &summary)
		if status != http.StatusOK {
			t.Fatalf("Summary returned %d", status)
		}
		if summary.Total != 42.50 || summary.ApprovedTotal != 42.50 {
			t.Errorf("Unexpected totals: %+v", summary)
		}
		if summary.EqualShare != 42.50 {
			t.Errorf("Expected equal share 42.50 for a single member, got %v", summary.EqualShare)
		}
	})
}

func TestMissingSecretIsServerError(t *testing.T) {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokenManager("", time.Hour)
	ts := httptest.NewServer(NewServer(store, tokens, logger).Handler())
	t.Cleanup(ts.Close)

	api := &testAPI{t: t, server: ts}
	api.register("Alice", "alice@example.com")

	var resp map[string]string
	status := api.do("POST", "/login", "", map[string]string{
		"email": "alice@example.com", "password": "correct horse battery",
	}, &resp)
	if status != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", status)
	}
	if resp["error"] != "Server misconfigured" {
		t.Errorf("Unexpected error message %q", resp["error"])
	}
}
