package catalog

import (
	"strings"

	"github.com/jonathan/career-portal/internal/types"
)

// UnsupportedMessage is the first-stage sentinel for roles outside the catalog.
const UnsupportedMessage = "This skill roadmap is currently not available. Please choose one of the top industry-demand skills."

const unsupportedFallbackRole = "Selected Skill"

// Unsupported builds the placeholder payload for input that resolves to no
// catalog role. The input is echoed as the recommended career.
func Unsupported(text string) types.CareerRoadmap {
	role := strings.TrimSpace(text)
	if role == "" {
		role = unsupportedFallbackRole
	}
	return types.CareerRoadmap{
		RecommendedCareer: role,
		StrengthProfile:   "You have clear intent to build career-ready skills through structured learning.",
		CareerPersona:     "Focused Growth Learner",
		Stages: types.RoadmapStages{
			Beginner:     []string{UnsupportedMessage},
			Intermediate: []string{"This skill roadmap is not available yet."},
			Advanced:     []string{"Choose one of the currently supported top industry-demand skills."},
		},
		EstimatedTimeline:          "N/A",
		ToolsToLearn:               []string{},
		Certifications:             []string{},
		RealWorldProjects:          []string{},
		PortfolioRequirements:      []string{},
		InterviewPreparationTopics: []string{},
		RequiredTechnicalSkills:    []string{},
		RequiredSoftSkills:         []string{},
		InternshipStrategy:         []string{},
		FreelancingStrategy:        []string{},
		JobPlatformsToApply:        []string{},
		ResumeTips:                 []string{},
		JobReadyChecklist:          []string{},
		SkillGapPreview:            []types.SkillGapItem{},
		Source:                     types.SourceFixedCatalogUnsupported,
	}
}
