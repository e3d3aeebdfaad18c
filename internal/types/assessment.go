// Package types provides type definitions for structured data used throughout the career portal.
package types

import (
	"time"

	"github.com/google/uuid"
)

// TotalQuestions is the fixed length of the career assessment dialogue.
const TotalQuestions = 6

// FirstQuestion opens every assessment.
const FirstQuestion = "What career or role are you most interested in right now?"

// Conversation roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// QAPair is one answered assessment question.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// HistoryMessage is one turn of the assessment conversation.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SkillGapItem estimates how far a user is from job-ready on a skill.
type SkillGapItem struct {
	Skill string `json:"skill" yaml:"skill"`
	Gap   int    `json:"gap" yaml:"gap"` // 0-100
}

// AssessmentResult is attached to a session once the last answer is in.
type AssessmentResult struct {
	StrengthProfile     string         `json:"strengthProfile"`
	CareerPersona       string         `json:"careerPersona"`
	SuggestedCareerPath string         `json:"suggestedCareerPath"`
	CanonicalRole       string         `json:"canonicalRole,omitempty"`
	Roadmap             CareerRoadmap  `json:"roadmap"`
	SkillGapPreview     []SkillGapItem `json:"skillGapPreview"`
}

// AssessmentSession is the per-user assessment progress record.
type AssessmentSession struct {
	ID                   uuid.UUID         `json:"id"`
	UserID               uuid.UUID         `json:"userId"`
	Answers              []QAPair          `json:"answers"`
	ConversationHistory  []HistoryMessage  `json:"conversationHistory"`
	Step                 int               `json:"assessmentStep"`
	CurrentQuestion      string            `json:"currentQuestion"`
	IsCompleted          bool              `json:"isCompleted"`
	FallbackQuestionUsed bool              `json:"fallbackQuestionUsed"`
	Result               *AssessmentResult `json:"result,omitempty"`
	CreatedAt            time.Time         `json:"createdAt"`
	UpdatedAt            time.Time         `json:"updatedAt"`
}

// Reset puts the session back to the first question and drops any prior result.
func (s *AssessmentSession) Reset() {
	s.Answers = []QAPair{}
	s.ConversationHistory = []HistoryMessage{{Role: RoleAssistant, Content: FirstQuestion}}
	s.Step = 1
	s.CurrentQuestion = FirstQuestion
	s.IsCompleted = false
	s.FallbackQuestionUsed = false
	s.Result = nil
}

// Normalize replaces absent collections and counters with their documented defaults.
func (s *AssessmentSession) Normalize() {
	if s.Answers == nil {
		s.Answers = []QAPair{}
	}
	if s.ConversationHistory == nil {
		s.ConversationHistory = []HistoryMessage{}
	}
	if s.Step < 0 {
		s.Step = 0
	}
}

// AssessmentProgress is the response payload for every assessment action.
type AssessmentProgress struct {
	Completed           bool              `json:"completed"`
	AssessmentCompleted bool              `json:"assessmentCompleted"`
	AssessmentStarted   bool              `json:"assessmentStarted"`
	AssessmentStep      int               `json:"assessmentStep"`
	TotalQuestions      int               `json:"totalQuestions"`
	CurrentQuestion     string            `json:"currentQuestion,omitempty"`
	Answers             []QAPair          `json:"answers"`
	ConversationHistory []HistoryMessage  `json:"conversationHistory"`
	Result              *AssessmentResult `json:"result,omitempty"`
	UpdatedAt           *time.Time        `json:"updatedAt,omitempty"`
}

// AssessmentRequest is the body of POST /career-assessment.
type AssessmentRequest struct {
	UserID Identifier `json:"userId"`
	Action string     `json:"action"`
	Answer string     `json:"answer,omitempty"`
}
