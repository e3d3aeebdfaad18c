package server

import (
	"net/http"
	"strings"

	"github.com/jonathan/career-portal/internal/types"
)

// handleListUsers handles GET /users. With ?phone= it returns the single
// matching user instead of the list.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if phone := strings.TrimSpace(r.URL.Query().Get("phone")); phone != "" {
		user, err := s.db.FindUserForLogin(r.Context(), phone)
		if err != nil {
			s.failure(w, r, err, "Internal server error")
			return
		}
		if user == nil || user.PhoneNumber != phone {
			s.errorResponse(w, http.StatusNotFound, "User not found")
			return
		}
		s.dataResponse(w, http.StatusOK, user.Public(), "")
		return
	}

	limit, err := queryInt(r, "limit", 100)
	if err != nil {
		s.failure(w, r, err, "Internal server error")
		return
	}
	users, err := s.db.ListUsers(r.Context(), limit)
	if err != nil {
		s.failure(w, r, err, "Internal server error")
		return
	}

	out := make([]*types.User, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	s.dataResponse(w, http.StatusOK, out, "")
}

// handleGetUser handles GET /users/{id}; id is a UUID or legacy id.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.resolveUser(r.Context(), r.PathValue("id"))
	if err != nil {
		s.failure(w, r, err, "Internal server error")
		return
	}
	s.dataResponse(w, http.StatusOK, user.Public(), "")
}
