package server

import (
	"net/http"
	"strings"

	"github.com/jonathan/career-portal/internal/activity"
	"github.com/jonathan/career-portal/internal/types"
)

// handleRecordActivity handles POST /activity.
func (s *Server) handleRecordActivity(w http.ResponseWriter, r *http.Request) {
	var req types.RecordActivityRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.failure(w, r, err, "Failed to log activity")
		return
	}
	if req.UserID == "" || strings.TrimSpace(req.ActivityType) == "" {
		s.errorResponse(w, http.StatusBadRequest, "Missing userId or activityType")
		return
	}
	activityType := types.ActivityType(strings.TrimSpace(req.ActivityType))
	if !activityType.Valid() {
		s.failure(w, r, activity.ErrUnknownType, "Failed to log activity")
		return
	}

	user, err := s.resolveUser(r.Context(), req.UserID.String())
	if err != nil {
		s.failure(w, r, err, "Failed to log activity")
		return
	}

	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	if err := s.activity.Record(r.Context(), user.ID, activityType, metadata); err != nil {
		s.failure(w, r, err, "Failed to log activity")
		return
	}

	s.dataResponse(w, http.StatusCreated, map[string]any{
		"userId":       user.ID,
		"activityType": activityType,
		"metadata":     metadata,
	}, "")
}

// handleListActivity handles GET /activity?user_id=&limit=. Unknown users
// have no activity.
func (s *Server) handleListActivity(w http.ResponseWriter, r *http.Request) {
	identifier := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if identifier == "" {
		s.errorResponse(w, http.StatusBadRequest, "Missing user_id")
		return
	}
	limit, err := queryInt(r, "limit", activity.DefaultListLimit)
	if err != nil {
		s.failure(w, r, err, "Failed to fetch activities")
		return
	}

	user, err := s.db.GetUserByIdentifier(r.Context(), identifier)
	if err != nil {
		s.failure(w, r, err, "Failed to fetch activities")
		return
	}
	if user == nil {
		s.dataResponse(w, http.StatusOK, []types.Activity{}, "")
		return
	}

	logs, err := s.activity.List(r.Context(), user.ID, limit)
	if err != nil {
		s.failure(w, r, err, "Failed to fetch activities")
		return
	}
	s.dataResponse(w, http.StatusOK, logs, "")
}

// handleRecentActivity handles GET /activity/recent?user_id=.
func (s *Server) handleRecentActivity(w http.ResponseWriter, r *http.Request) {
	identifier := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if identifier == "" {
		s.errorResponse(w, http.StatusBadRequest, "Missing user_id")
		return
	}

	user, err := s.db.GetUserByIdentifier(r.Context(), identifier)
	if err != nil {
		s.failure(w, r, err, "Failed to fetch activities")
		return
	}
	if user == nil {
		s.dataResponse(w, http.StatusOK, []activity.RecentEvent{}, "")
		return
	}

	events, err := s.activity.Recent(r.Context(), user.ID)
	if err != nil {
		s.failure(w, r, err, "Failed to fetch activities")
		return
	}
	s.dataResponse(w, http.StatusOK, events, "")
}
