package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/roomledger/roomledger/internal/middleware"
	"github.com/roomledger/roomledger/internal/models"
)

type createRoomRequest struct {
	Name       string `json:"name"`
	InviteCode string `json:"inviteCode"`
}

// handleCreateRoom implements POST /rooms. The caller becomes the room's
// manager atomically with creation.
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		s.respondError(w, http.StatusBadRequest, "Room name is required")
		return
	}

	identity := middleware.GetIdentity(r.Context())
	room, err := s.roomSvc.Create(r.Context(), identity, name, req.InviteCode)
	if err != nil {
		s.serviceError(w, err, "Failed to create room")
		return
	}

	s.respondJSON(w, http.StatusOK, room)
}

type joinRoomRequest struct {
	InviteCode string `json:"inviteCode"`
}

// handleJoinRoom implements POST /rooms/join.
func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	var req joinRoomRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if strings.TrimSpace(req.InviteCode) == "" {
		s.respondError(w, http.StatusBadRequest, "Invite code is required")
		return
	}

	identity := middleware.GetIdentity(r.Context())
	room, err := s.roomSvc.Join(r.Context(), identity, strings.TrimSpace(req.InviteCode))
	if err != nil {
		s.serviceError(w, err, "Failed to join room")
		return
	}

	s.respondJSON(w, http.StatusOK, room)
}

// handleListRooms implements GET /rooms: the caller's room, or an empty list
// when unaffiliated.
func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	rooms, err := s.roomSvc.List(r.Context(), identity)
	if err != nil {
		s.serviceError(w, err, "Failed to fetch rooms")
		return
	}
	s.respondJSON(w, http.StatusOK, rooms)
}

// roomWithMembers is the GET /rooms/{roomId} payload: the room's fields with
// the member list (passwords stripped) inlined.
type roomWithMembers struct {
	*models.Room
	Roommates []*models.Roommate `json:"roommates"`
}

// handleGetRoom implements GET /rooms/{roomId}.
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	room, members, err := s.roomSvc.Get(r.Context(), identity, chi.URLParam(r, "roomId"))
	if err != nil {
		s.serviceError(w, err, "Failed to fetch room")
		return
	}
	s.respondJSON(w, http.StatusOK, roomWithMembers{Room: room, Roommates: members})
}

type updateRoomRequest struct {
	Name       *string `json:"name"`
	InviteCode *string `json:"inviteCode"`
}

// handleUpdateRoom implements PATCH /rooms/{roomId} (manager-only). Each
// field is independently omittable; a supplied field must be non-empty after
// trimming.
func (s *Server) handleUpdateRoom(w http.ResponseWriter, r *http.Request) {
	var req updateRoomRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	var name, inviteCode *string
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		name = req.Name
	}
	if req.InviteCode != nil && strings.TrimSpace(*req.InviteCode) != "" {
		inviteCode = req.InviteCode
	}
	if name == nil && inviteCode == nil {
		s.respondError(w, http.StatusBadRequest, "name or inviteCode is required")
		return
	}

	identity := middleware.GetIdentity(r.Context())
	room, err := s.roomSvc.Update(r.Context(), identity, chi.URLParam(r, "roomId"), name, inviteCode)
	if err != nil {
		s.serviceError(w, err, "Failed to update room")
		return
	}

	s.respondJSON(w, http.StatusOK, room)
}

// handleRegenerateInviteCode implements POST /rooms/{roomId}/invite-code
// (manager-only).
func (s *Server) handleRegenerateInviteCode(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	room, err := s.roomSvc.RegenerateInviteCode(r.Context(), identity, chi.URLParam(r, "roomId"))
	if err != nil {
		s.serviceError(w, err, "Failed to regenerate invite code")
		return
	}
	s.respondJSON(w, http.StatusOK, room)
}

// handleDeleteRoom implements DELETE /rooms/{roomId} (manager-only, cascades
// to expenses and roommates).
func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if err := s.roomSvc.Delete(r.Context(), identity, chi.URLParam(r, "roomId")); err != nil {
		s.serviceError(w, err, "Failed to delete room")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
