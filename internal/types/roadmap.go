package types

import (
	"time"

	"github.com/google/uuid"
)

// Roadmap sources
const (
	SourceFixedCatalog            = "fixed_catalog"
	SourceFixedCatalogUnsupported = "fixed_catalog_unsupported"
)

// RoadmapStages holds the ordered tasks for each learning stage.
type RoadmapStages struct {
	Beginner     []string `json:"beginner" yaml:"beginner"`
	Intermediate []string `json:"intermediate" yaml:"intermediate"`
	Advanced     []string `json:"advanced" yaml:"advanced"`
}

// CareerRoadmap is the enriched roadmap payload handed to users.
type CareerRoadmap struct {
	RecommendedCareer          string         `json:"recommendedCareer"`
	CanonicalRole              string         `json:"canonicalRole,omitempty"`
	StrengthProfile            string         `json:"strengthProfile"`
	CareerPersona              string         `json:"careerPersona"`
	Stages                     RoadmapStages  `json:"roadmap"`
	EstimatedTimeline          string         `json:"estimatedTimeline"`
	ToolsToLearn               []string       `json:"toolsToLearn"`
	Certifications             []string       `json:"certifications"`
	RealWorldProjects          []string       `json:"realWorldProjects"`
	PortfolioRequirements      []string       `json:"portfolioRequirements"`
	InterviewPreparationTopics []string       `json:"interviewPreparationTopics"`
	RequiredTechnicalSkills    []string       `json:"requiredTechnicalSkills"`
	RequiredSoftSkills         []string       `json:"requiredSoftSkills"`
	InternshipStrategy         []string       `json:"internshipStrategy"`
	FreelancingStrategy        []string       `json:"freelancingStrategy"`
	SalaryInsight              string         `json:"salaryInsight"`
	JobPlatformsToApply        []string       `json:"jobPlatformsToApply"`
	ResumeTips                 []string       `json:"resumeTips"`
	JobReadyChecklist          []string       `json:"jobReadyChecklist"`
	SkillGapPreview            []SkillGapItem `json:"skillGapPreview"`
	Source                     string         `json:"source"`
}

// Supported reports whether the payload came from a catalog entry.
func (r *CareerRoadmap) Supported() bool {
	return r.Source == SourceFixedCatalog
}

// StoredRoadmap is a user's persisted roadmap.
type StoredRoadmap struct {
	UserID      uuid.UUID     `json:"userId"`
	CareerTitle string        `json:"careerTitle"`
	Payload     CareerRoadmap `json:"payload"`
	GeneratedAt time.Time     `json:"generatedAt"`
}
