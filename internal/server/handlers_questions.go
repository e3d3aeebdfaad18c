package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/db"
	"github.com/jonathan/career-portal/internal/types"
	"go.uber.org/zap"
)

// handleCreateQuestion handles POST /questions.
func (s *Server) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req types.CreateQuestionRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.failure(w, r, err, "Failed to create question")
		return
	}
	if err := s.validateStruct(&req); err != nil {
		s.failure(w, r, err, "Failed to create question")
		return
	}

	user, err := s.resolveUser(r.Context(), req.UserID)
	if err != nil {
		s.failure(w, r, err, "Failed to create question")
		return
	}

	q, err := s.db.CreateQuestion(r.Context(), &types.Question{
		UserID:           user.ID,
		SubjectID:        req.SubjectID,
		Text:             strings.TrimSpace(req.Text),
		Type:             req.Type,
		ImageURL:         req.ImageURL,
		AudioURL:         req.AudioURL,
		Language:         req.Language,
		ResponseLanguage: req.ResponseLanguage,
	})
	if err != nil {
		s.failure(w, r, err, "Failed to create question")
		return
	}
	s.dataResponse(w, http.StatusCreated, q, "")
}

// handleListQuestions handles GET /questions?user_id=&status=&limit=.
func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filters := db.QuestionFilters{Status: strings.TrimSpace(query.Get("status"))}

	if filters.Status != "" {
		switch filters.Status {
		case types.QuestionPending, types.QuestionAnswered, types.QuestionEscalated:
		default:
			s.errorResponse(w, http.StatusBadRequest, "Invalid status")
			return
		}
	}

	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		s.failure(w, r, err, "Failed to fetch questions")
		return
	}
	filters.Limit = limit

	if identifier := strings.TrimSpace(query.Get("user_id")); identifier != "" {
		user, err := s.resolveUser(r.Context(), identifier)
		if err != nil {
			s.failure(w, r, err, "Failed to fetch questions")
			return
		}
		filters.UserID = user.ID
	}

	questions, err := s.db.ListQuestions(r.Context(), filters)
	if err != nil {
		s.failure(w, r, err, "Failed to fetch questions")
		return
	}
	if questions == nil {
		questions = []types.Question{}
	}
	s.dataResponse(w, http.StatusOK, questions, "")
}

// handleGetQuestion handles GET /questions/{id}.
func (s *Server) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.failure(w, r, err, "Failed to fetch question")
		return
	}

	q, err := s.db.GetQuestion(r.Context(), id)
	if err != nil {
		s.failure(w, r, err, "Failed to fetch question")
		return
	}
	if q == nil {
		s.errorResponse(w, http.StatusNotFound, "Question not found")
		return
	}
	s.dataResponse(w, http.StatusOK, q, "")
}

// handleUpdateQuestionStatus handles PATCH /questions/{id}/status.
func (s *Server) handleUpdateQuestionStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.failure(w, r, err, "Failed to update question")
		return
	}
	var req types.UpdateQuestionStatusRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.failure(w, r, err, "Failed to update question")
		return
	}
	if err := s.validateStruct(&req); err != nil {
		s.failure(w, r, err, "Failed to update question")
		return
	}

	found, err := s.db.UpdateQuestionStatus(r.Context(), id, req.Status)
	if err != nil {
		s.failure(w, r, err, "Failed to update question")
		return
	}
	if !found {
		s.errorResponse(w, http.StatusNotFound, "Question not found")
		return
	}
	s.dataResponse(w, http.StatusOK, map[string]string{"id": id.String(), "status": req.Status}, "")
}

// handleDeleteQuestion handles DELETE /questions/{id}.
func (s *Server) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.failure(w, r, err, "Failed to delete question")
		return
	}

	found, err := s.db.DeleteQuestion(r.Context(), id)
	if err != nil {
		s.failure(w, r, err, "Failed to delete question")
		return
	}
	if !found {
		s.errorResponse(w, http.StatusNotFound, "Question not found")
		return
	}
	s.dataResponse(w, http.StatusOK, nil, "Question deleted")
}

// handleCreateAnswer handles POST /questions/{id}/answers. The question is
// marked answered in the same transaction.
func (s *Server) handleCreateAnswer(w http.ResponseWriter, r *http.Request) {
	questionID, err := pathUUID(r, "id")
	if err != nil {
		s.failure(w, r, err, "Failed to create answer")
		return
	}
	var req types.CreateAnswerRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.failure(w, r, err, "Failed to create answer")
		return
	}
	if err := s.validateStruct(&req); err != nil {
		s.failure(w, r, err, "Failed to create answer")
		return
	}

	answer := &types.Answer{
		QuestionID:      questionID,
		Text:            strings.TrimSpace(req.Text),
		Type:            req.AnswerType,
		ConfidenceScore: req.ConfidenceScore,
	}
	if req.TeacherID != "" {
		teacherID := uuid.MustParse(req.TeacherID)
		answer.TeacherID = &teacherID
	}

	created, err := s.db.CreateAnswer(r.Context(), answer)
	if err != nil {
		s.failure(w, r, err, "Failed to create answer")
		return
	}
	if created == nil {
		s.errorResponse(w, http.StatusNotFound, "Question not found")
		return
	}
	s.logger.Info("question answered",
		zap.String("question_id", questionID.String()),
		zap.String("answer_type", created.Type),
	)
	s.dataResponse(w, http.StatusCreated, created, "")
}

// handleListAnswers handles GET /questions/{id}/answers.
func (s *Server) handleListAnswers(w http.ResponseWriter, r *http.Request) {
	questionID, err := pathUUID(r, "id")
	if err != nil {
		s.failure(w, r, err, "Failed to fetch answers")
		return
	}

	answers, err := s.db.ListAnswers(r.Context(), questionID)
	if err != nil {
		s.failure(w, r, err, "Failed to fetch answers")
		return
	}
	if answers == nil {
		answers = []types.Answer{}
	}
	s.dataResponse(w, http.StatusOK, answers, "")
}

// handleMarkHelpful handles POST /answers/{id}/helpful.
func (s *Server) handleMarkHelpful(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.failure(w, r, err, "Failed to update answer")
		return
	}

	answer, err := s.db.MarkAnswerHelpful(r.Context(), id)
	if err != nil {
		s.failure(w, r, err, "Failed to update answer")
		return
	}
	if answer == nil {
		s.errorResponse(w, http.StatusNotFound, "Answer not found")
		return
	}
	s.dataResponse(w, http.StatusOK, answer, "")
}
