package server

import (
	"net/http"
	"strings"

	"github.com/jonathan/career-portal/internal/types"
)

// Assessment actions
const (
	actionStart  = "start"
	actionAnswer = "answer"
)

// handleAssessmentAction handles POST /career-assessment.
func (s *Server) handleAssessmentAction(w http.ResponseWriter, r *http.Request) {
	var req types.AssessmentRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.failure(w, r, err, "Failed to process assessment")
		return
	}

	userID := strings.TrimSpace(req.UserID.String())
	action := strings.TrimSpace(req.Action)
	if userID == "" || action == "" {
		s.errorResponse(w, http.StatusBadRequest, "Missing userId or action")
		return
	}

	var (
		progress *types.AssessmentProgress
		err      error
	)
	switch action {
	case actionStart:
		progress, err = s.engine.Start(r.Context(), userID)
	case actionAnswer:
		if strings.TrimSpace(req.Answer) == "" {
			s.errorResponse(w, http.StatusBadRequest, "Missing answer text")
			return
		}
		progress, err = s.engine.SubmitAnswer(r.Context(), userID, req.Answer)
	default:
		s.errorResponse(w, http.StatusBadRequest, "Invalid action")
		return
	}
	if err != nil {
		s.failure(w, r, err, "Failed to process assessment")
		return
	}

	s.dataResponse(w, http.StatusOK, progress, "")
}

// handleAssessmentStatus handles GET /career-assessment?user_id=.
func (s *Server) handleAssessmentStatus(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		s.errorResponse(w, http.StatusBadRequest, "Missing user_id")
		return
	}

	progress, err := s.engine.GetStatus(r.Context(), userID)
	if err != nil {
		s.failure(w, r, err, "Failed to fetch assessment")
		return
	}
	s.dataResponse(w, http.StatusOK, progress, "")
}
