// Package server wires the HTTP surface: routing, request decoding and the
// mapping from business-rule errors to status codes.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roomledger/roomledger/internal/auth"
	"github.com/roomledger/roomledger/internal/middleware"
	"github.com/roomledger/roomledger/internal/service"
	"github.com/roomledger/roomledger/internal/storage"
)

// Server hosts the HTTP API.
type Server struct {
	store  storage.Store
	tokens *auth.TokenManager
	logger *slog.Logger

	authSvc     *service.AuthService
	roomSvc     *service.RoomService
	roommateSvc *service.RoommateService
	expenseSvc  *service.ExpenseService
}

// NewServer creates a Server and its services over the given store.
func NewServer(store storage.Store, tokens *auth.TokenManager, logger *slog.Logger) *Server {
	return &Server{
		store:       store,
		tokens:      tokens,
		logger:      logger,
		authSvc:     service.NewAuthService(store, tokens, logger),
		roomSvc:     service.NewRoomService(store, logger),
		roommateSvc: service.NewRoommateService(store, logger),
		expenseSvc:  service.NewExpenseService(store, logger),
	}
}

// Handler builds the router with all routes and middleware registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Method("GET", "/metrics", promhttp.Handler())

	// Public endpoints.
	r.Post("/login", s.handleLogin)
	r.Post("/roommates/register", s.handleRegister)

	// Everything else requires a resolved identity.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(s.tokens, s.store, s.logger))

		r.Post("/roommates/add-member", s.handleAddMember)
		r.Post("/expenses/{expenseId}/status", s.handleUpdateExpenseStatus)

		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", s.handleListRooms)
			r.Post("/", s.handleCreateRoom)
			r.Post("/join", s.handleJoinRoom)

			r.Route("/{roomId}", func(r chi.Router) {
				r.Get("/", s.handleGetRoom)
				r.Patch("/", s.handleUpdateRoom)
				r.Delete("/", s.handleDeleteRoom)
				r.Post("/invite-code", s.handleRegenerateInviteCode)
				r.Get("/roommates", s.handleListMembers)
				r.Get("/expenses", s.handleListExpenses)
				r.Post("/expenses", s.handleCreateExpense)
				r.Get("/expenses/summary", s.handleExpenseSummary)
			})
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.Error("Failed to encode JSON response", "error", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads the request body into dst and returns an error message on
// failure. The caller should return immediately when ok == false.
func (s *Server) decodeJSON(r *http.Request, dst any) (ok bool, errMsg string) {
	if r.Body == nil {
		return false, "Request body is empty"
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return false, fmt.Sprintf("Invalid JSON: %v", err)
	}
	return true, ""
}

// serviceError maps business-rule sentinels to their status codes. Anything
// unrecognized is logged in full and surfaced only as the generic fallback,
// never leaking internals.
func (s *Server) serviceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		s.respondError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
	case errors.Is(err, auth.ErrMisconfigured):
		s.logger.Error("JWT secret is not configured")
		s.respondError(w, http.StatusInternalServerError, auth.ErrMisconfigured.Error())
	case errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrInviteCodeExists),
		errors.Is(err, service.ErrNoRoom):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrEmailRequired):
		s.respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrRoomNotFound),
		errors.Is(err, service.ErrRoommateNotFound),
		errors.Is(err, service.ErrExpenseNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAlreadyInRoom),
		errors.Is(err, service.ErrAlreadyMember):
		s.respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInviteCodeExhausted):
		s.logger.Error("Invite code generation exhausted")
		s.respondError(w, http.StatusInternalServerError, service.ErrInviteCodeExhausted.Error())
	default:
		s.logger.Error(fallback, "error", err)
		s.respondError(w, http.StatusInternalServerError, fallback)
	}
}
