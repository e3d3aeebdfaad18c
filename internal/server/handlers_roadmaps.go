package server

import (
	"net/http"
	"strings"

	"github.com/jonathan/career-portal/internal/types"
)

// handleGetRoadmap handles GET /roadmaps/{user_id}.
func (s *Server) handleGetRoadmap(w http.ResponseWriter, r *http.Request) {
	user, err := s.resolveUser(r.Context(), r.PathValue("user_id"))
	if err != nil {
		s.failure(w, r, err, "Failed to fetch roadmap")
		return
	}

	roadmap, err := s.db.GetRoadmap(r.Context(), user.ID)
	if err != nil {
		s.failure(w, r, err, "Failed to fetch roadmap")
		return
	}
	if roadmap == nil {
		s.errorResponse(w, http.StatusNotFound, "Roadmap not found")
		return
	}
	s.dataResponse(w, http.StatusOK, roadmap, "")
}

// handleListRoles handles GET /roles.
func (s *Server) handleListRoles(w http.ResponseWriter, _ *http.Request) {
	s.dataResponse(w, http.StatusOK, s.catalog.Roles(), "")
}

// rolePreview is the body of GET /roles/resolve.
type rolePreview struct {
	Query   string              `json:"query"`
	Match   string              `json:"match"`
	Roadmap types.CareerRoadmap `json:"roadmap"`
}

// handleResolveRole handles GET /roles/resolve?q=.
func (s *Server) handleResolveRole(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		s.errorResponse(w, http.StatusBadRequest, "Missing q")
		return
	}
	roadmap, match := s.catalog.RoadmapWithMatch(q)
	s.dataResponse(w, http.StatusOK, rolePreview{Query: q, Match: string(match), Roadmap: roadmap}, "")
}
