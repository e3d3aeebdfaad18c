package types

import (
	"time"

	"github.com/google/uuid"
)

// ActivityType names a user activity event.
type ActivityType string

// Activity types recorded by the portal.
const (
	ActivityLogin            ActivityType = "LOGIN"
	ActivityAssessmentStart  ActivityType = "ASSESSMENT_START"
	ActivityQuestionAnswered ActivityType = "QUESTION_ANSWERED"
	ActivityRoadmapGenerated ActivityType = "ROADMAP_GENERATED"
	ActivityChatMessage      ActivityType = "CHAT_MESSAGE"
	ActivitySkillGapCheck    ActivityType = "SKILL_GAP_CHECK"
	ActivityLogout           ActivityType = "LOGOUT"
)

var knownActivityTypes = map[ActivityType]bool{
	ActivityLogin:            true,
	ActivityAssessmentStart:  true,
	ActivityQuestionAnswered: true,
	ActivityRoadmapGenerated: true,
	ActivityChatMessage:      true,
	ActivitySkillGapCheck:    true,
	ActivityLogout:           true,
}

// Valid reports whether t is one of the known activity types.
func (t ActivityType) Valid() bool {
	return knownActivityTypes[t]
}

// Activity is one recorded event.
type Activity struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"userId"`
	Type      ActivityType   `json:"activityType"`
	Metadata  map[string]any `json:"metadata"`
	Timestamp time.Time      `json:"timestamp"`
}

// RecordActivityRequest is the body of POST /activity.
type RecordActivityRequest struct {
	UserID       Identifier     `json:"userId"`
	ActivityType string         `json:"activityType"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}
