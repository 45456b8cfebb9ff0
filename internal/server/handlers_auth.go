package server

import (
	"net/http"

	"github.com/roomledger/roomledger/internal/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string           `json:"token"`
	User  *models.Roommate `json:"user"`
}

// handleLogin implements POST /login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if req.Email == "" || req.Password == "" {
		s.respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	token, user, err := s.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.serviceError(w, err, "Failed to sign in")
		return
	}

	s.respondJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}
