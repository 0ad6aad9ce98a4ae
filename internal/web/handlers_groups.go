package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jthomisee/changing-500/internal/auth"
	"github.com/jthomisee/changing-500/internal/store"
)

type groupResponse struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	OwnerID   string        `json:"ownerId"`
	CreatedAt time.Time     `json:"createdAt"`
	Members   []memberEntry `json:"members,omitempty"`
}

type memberEntry struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		errorJSON(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := readJSON(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		errorJSON(w, http.StatusBadRequest, "group name is required")
		return
	}

	group := &store.Group{
		ID:        uuid.New().String(),
		Name:      req.Name,
		OwnerID:   user.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateGroup(r.Context(), group); err != nil {
		serverError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, groupResponse{
		ID: group.ID, Name: group.Name, OwnerID: group.OwnerID, CreatedAt: group.CreatedAt,
	})
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		errorJSON(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	groups, err := s.store.ListUserGroups(r.Context(), user.ID)
	if err != nil {
		serverError(w, err)
		return
	}

	resp := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		resp = append(resp, groupResponse{
			ID: g.ID, Name: g.Name, OwnerID: g.OwnerID, CreatedAt: g.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": resp})
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	_, group := s.requireMember(w, r, groupID)
	if group == nil {
		return
	}

	members, err := s.store.ListMembers(r.Context(), groupID)
	if err != nil {
		serverError(w, err)
		return
	}

	resp := groupResponse{
		ID: group.ID, Name: group.Name, OwnerID: group.OwnerID, CreatedAt: group.CreatedAt,
	}
	for _, m := range members {
		resp.Members = append(resp.Members, memberEntry{UserID: m.UserID, Name: m.Name, Role: m.Role})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	user, group := s.requireMember(w, r, groupID)
	if group == nil {
		return
	}
	if group.OwnerID != user.ID {
		errorJSON(w, http.StatusForbidden, "only the group owner can delete the group")
		return
	}

	if err := s.store.DeleteGroup(r.Context(), groupID); err != nil {
		serverError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAddMember adds an existing user to the roster by email.
func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	user, group := s.requireMember(w, r, groupID)
	if group == nil {
		return
	}
	if group.OwnerID != user.ID {
		errorJSON(w, http.StatusForbidden, "only the group owner can add members")
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := readJSON(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	candidate, err := s.store.GetUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		serverError(w, err)
		return
	}
	if candidate == nil {
		errorJSON(w, http.StatusNotFound, "no user with that email")
		return
	}

	already, err := s.store.IsMember(r.Context(), groupID, candidate.ID)
	if err != nil {
		serverError(w, err)
		return
	}
	if already {
		errorJSON(w, http.StatusConflict, "user is already a member")
		return
	}

	if err := s.store.AddMember(r.Context(), groupID, candidate.ID, "member"); err != nil {
		serverError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, memberEntry{UserID: candidate.ID, Name: candidate.Name, Role: "member"})
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	targetID := chi.URLParam(r, "userID")

	user, group := s.requireMember(w, r, groupID)
	if group == nil {
		return
	}
	// Members may leave on their own; removing anyone else takes the owner.
	if targetID != user.ID && group.OwnerID != user.ID {
		errorJSON(w, http.StatusForbidden, "only the group owner can remove members")
		return
	}
	if targetID == group.OwnerID {
		errorJSON(w, http.StatusBadRequest, "the group owner cannot be removed")
		return
	}

	if err := s.store.RemoveMember(r.Context(), groupID, targetID); err != nil {
		serverError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
