package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/roomledger/roomledger/internal/middleware"
)

type registerRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	InviteCode string `json:"inviteCode"`
}

// handleRegister implements POST /roommates/register (unauthenticated
// self-service signup, optionally into a room via invite code).
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		s.respondError(w, http.StatusBadRequest, "name, email, and password are required")
		return
	}

	roommate, err := s.roommateSvc.Register(r.Context(), req.Name, req.Email, req.Password, strings.TrimSpace(req.InviteCode))
	if err != nil {
		s.serviceError(w, err, "Failed to register roommate")
		return
	}

	s.respondJSON(w, http.StatusOK, roommate)
}

type addMemberRequest struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// handleAddMember implements POST /roommates/add-member (manager-only).
func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if req.ID == "" && strings.TrimSpace(req.Email) == "" {
		s.respondError(w, http.StatusBadRequest, "id or email is required")
		return
	}

	identity := middleware.GetIdentity(r.Context())
	roommate, err := s.roommateSvc.AddMember(r.Context(), identity, req.ID, req.Email)
	if err != nil {
		s.serviceError(w, err, "Failed to add member")
		return
	}

	s.respondJSON(w, http.StatusOK, roommate)
}

// handleListMembers implements GET /rooms/{roomId}/roommates.
func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	members, err := s.roommateSvc.ListMembers(r.Context(), identity, chi.URLParam(r, "roomId"))
	if err != nil {
		s.serviceError(w, err, "Failed to fetch roommates")
		return
	}
	s.respondJSON(w, http.StatusOK, members)
}
