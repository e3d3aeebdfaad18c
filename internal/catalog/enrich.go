package catalog

import (
	"fmt"
	"strings"

	"github.com/jonathan/career-portal/internal/types"
)

// Minimum list sizes after enrichment.
const (
	minStageItems      = 10
	minInterviewTopics = 8
	minResumeTips      = 6
	minPortfolioItems  = 6
	minProjects        = 6
	minChecklistItems  = 8
	maxToolSkills      = 8
)

var (
	genericBeginner = []string{
		"Learn core fundamentals with official documentation and guided tutorials",
		"Practice daily with small focused exercises",
		"Create notes and revision sheets for key concepts",
		"Set up development/design environment and workflow tools",
		"Publish first project iteration with README/case summary",
		"Follow coding/design standards and basic accessibility/usability rules",
		"Learn version control basics and collaborative workflow",
		"Get mentor/peer feedback and iterate quickly",
	}
	genericIntermediate = []string{
		"Build feature-complete projects with real-world constraints",
		"Integrate APIs/services and handle errors edge-to-edge",
		"Write reusable modules/components and improve architecture quality",
		"Use testing/validation workflows for reliability",
		"Improve performance, security, and maintainability",
		"Document decisions, tradeoffs, and technical/design rationale",
		"Contribute to open-source or collaborative team repositories",
		"Run project demos and collect structured user/reviewer feedback",
		"Prepare internship-ready portfolio and resume artifacts",
	}
	genericAdvanced = []string{
		"Build production-grade capstone project with measurable outcomes",
		"Apply advanced optimization and quality standards",
		"Handle monitoring/analytics and continuous improvement loops",
		"Simulate interview scenarios and explain project architecture/process",
		"Tailor resume and portfolio for role-specific applications",
		"Run mock interviews and refine communication delivery",
		"Apply to internships/jobs consistently with weekly targets",
		"Prepare for domain-specific case studies and problem-solving rounds",
		"Track rejections/feedback and adapt strategy quickly",
	}
	genericTechnical = []string{
		"Fundamentals and core concepts",
		"Project architecture and problem decomposition",
	}
	genericInternship = []string{
		"Start applying after 3 strong projects/case studies",
		"Target startups for faster ownership and learning",
		"Customize each application with relevant project links",
		"Network with hiring managers and alumni on LinkedIn",
		"Track applications weekly and follow up professionally",
	}
	genericFreelancing = []string{
		"Create service packages based on your strongest projects",
		"Build profile credibility with detailed portfolio proof",
		"Start with small fixed-scope gigs and collect reviews",
		"Use proposals that clearly define deliverables and timelines",
		"Retain clients via maintenance/support offerings",
	}
	genericInterview = []string{
		"Project walkthrough and technical/design tradeoffs",
		"Debugging/problem-solving approach",
		"Behavioral STAR answers",
		"System/process thinking for real use-cases",
		"Role-specific scenario questions",
	}
	genericResumeTips = []string{
		"Keep resume one page with high-signal achievements",
		"Put portfolio/GitHub links in header and ensure they work",
		"Add keywords from target job descriptions",
		"Quantify impact for each project and internship bullet",
	}
	genericPortfolio = []string{
		"Include problem statement, approach, and final outcome",
		"Add deployment/demo links and clean documentation",
		"Show before/after improvements and measurable impact",
	}
	genericChecklist = []string{
		"4+ portfolio-ready projects/case studies completed",
		"Resume and LinkedIn profile optimized for target role",
		"Mock interviews completed with feedback incorporated",
		"Consistent weekly applications on multiple platforms",
	}
)

// Enrich expands a catalog entry into the full roadmap payload. Curated items
// come first; generic items are appended, the result is deduplicated and
// then padded with numbered fillers up to each list's floor. The entry is not
// modified.
func (c *Catalog) Enrich(entry *FixedRoleRoadmap) types.CareerRoadmap {
	role := entry.CanonicalRole

	tools := entry.ToolsToLearn
	if len(tools) > maxToolSkills {
		tools = tools[:maxToolSkills]
	}

	salary := entry.SalaryInsight
	if salary == "" {
		salary = entry.SalaryRange
	}

	return types.CareerRoadmap{
		RecommendedCareer: role,
		CanonicalRole:     role,
		StrengthProfile:   entry.StrengthProfile,
		CareerPersona:     entry.CareerPersona,
		Stages: types.RoadmapStages{
			Beginner: padTo(unique(entry.Roadmap.Beginner,
				[]string{fmt.Sprintf("Build a weekly %s learning schedule and track progress", role)},
				genericBeginner), minStageItems, "Beginner practice task"),
			Intermediate: padTo(unique(entry.Roadmap.Intermediate, genericIntermediate), minStageItems, "Intermediate implementation task"),
			Advanced:     padTo(unique(entry.Roadmap.Advanced, genericAdvanced), minStageItems, "Advanced execution task"),
		},
		EstimatedTimeline:       entry.EstimatedTimeline,
		ToolsToLearn:            unique(entry.ToolsToLearn),
		Certifications:          unique(entry.Certifications),
		RequiredTechnicalSkills: unique(entry.RequiredTechnicalSkills, tools, genericTechnical),
		RequiredSoftSkills:      unique(entry.RequiredSoftSkills, c.softSkills),
		InternshipStrategy:      unique(entry.InternshipStrategy, genericInternship),
		FreelancingStrategy:     unique(entry.FreelancingStrategy, genericFreelancing),
		InterviewPreparationTopics: padTo(unique(entry.InterviewPreparationTopics, genericInterview),
			minInterviewTopics, "Interview prep topic"),
		ResumeTips:            padTo(unique(entry.ResumeTips, genericResumeTips), minResumeTips, "Resume optimization tip"),
		PortfolioRequirements: padTo(unique(entry.PortfolioRequirements, genericPortfolio), minPortfolioItems, "Portfolio requirement"),
		RealWorldProjects: padTo(unique(entry.RealWorldProjects, []string{
			fmt.Sprintf("%s capstone project with production-quality standards", role),
			fmt.Sprintf("Collaborative %s project in team setting", strings.ToLower(role)),
			"Real-world scenario project with user/client feedback loop",
		}), minProjects, "Project build"),
		JobReadyChecklist:   padTo(unique(entry.JobReadyChecklist, genericChecklist), minChecklistItems, "Job readiness checkpoint"),
		SalaryInsight:       salary,
		JobPlatformsToApply: unique(entry.JobPlatformsToApply),
		SkillGapPreview:     append([]types.SkillGapItem{}, entry.SkillGapPreview...),
		Source:              types.SourceFixedCatalog,
	}
}

// unique concatenates lists, trims each item, drops empties and keeps the
// first occurrence of every value. It always returns a fresh, non-nil slice.
func unique(lists ...[]string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, list := range lists {
		for _, item := range list {
			item = strings.TrimSpace(item)
			if item == "" || seen[item] {
				continue
			}
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}

// padTo appends "<prefix> 1", "<prefix> 2", ... until items has floor
// entries, skipping any filler already present.
func padTo(items []string, floor int, prefix string) []string {
	present := make(map[string]bool, len(items))
	for _, item := range items {
		present[item] = true
	}
	for n := 1; len(items) < floor; n++ {
		filler := fmt.Sprintf("%s %d", prefix, n)
		if present[filler] {
			continue
		}
		items = append(items, filler)
	}
	return items
}
