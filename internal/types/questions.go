package types

import (
	"time"

	"github.com/google/uuid"
)

// Question statuses
const (
	QuestionPending   = "pending"
	QuestionAnswered  = "answered"
	QuestionEscalated = "escalated"
)

// Question is a student question posted to the Q&A board.
type Question struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	SubjectID        *int      `json:"subject_id,omitempty"`
	Text             string    `json:"question_text"`
	Type             string    `json:"question_type"`
	ImageURL         string    `json:"image_url,omitempty"`
	AudioURL         string    `json:"audio_url,omitempty"`
	Language         string    `json:"language"`
	ResponseLanguage string    `json:"response_language"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

// Answer is a reply to a Question from an AI, teacher or peer.
type Answer struct {
	ID              uuid.UUID  `json:"id"`
	QuestionID      uuid.UUID  `json:"question_id"`
	Text            string     `json:"answer_text"`
	Type            string     `json:"answer_type"`
	TeacherID       *uuid.UUID `json:"teacher_id,omitempty"`
	ConfidenceScore *float64   `json:"confidence_score,omitempty"`
	HelpfulVotes    int        `json:"helpful_votes"`
	CreatedAt       time.Time  `json:"created_at"`
}

// CreateQuestionRequest is the body of POST /questions.
type CreateQuestionRequest struct {
	UserID           string `json:"userId" validate:"required"`
	SubjectID        *int   `json:"subjectId,omitempty"`
	Text             string `json:"text" validate:"required,min=3"`
	Type             string `json:"type,omitempty" validate:"omitempty,oneof=text image voice"`
	ImageURL         string `json:"imageUrl,omitempty" validate:"omitempty,url"`
	AudioURL         string `json:"audioUrl,omitempty" validate:"omitempty,url"`
	Language         string `json:"language,omitempty"`
	ResponseLanguage string `json:"responseLanguage,omitempty"`
}

// UpdateQuestionStatusRequest is the body of PATCH /questions/{id}/status.
type UpdateQuestionStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending answered escalated"`
}

// CreateAnswerRequest is the body of POST /questions/{id}/answers.
type CreateAnswerRequest struct {
	Text            string   `json:"text" validate:"required"`
	AnswerType      string   `json:"answerType" validate:"required,oneof=ai teacher peer"`
	TeacherID       string   `json:"teacherId,omitempty" validate:"omitempty,uuid"`
	ConfidenceScore *float64 `json:"confidence,omitempty" validate:"omitempty,gte=0,lte=1"`
}
