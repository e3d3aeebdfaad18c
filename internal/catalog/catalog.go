// Package catalog holds the fixed role roadmap catalog and resolves free-text
// career interests to a canonical role.
//
// The catalog is embedded at compile time as YAML, validated against an
// embedded JSON Schema on first use and never mutated afterwards, so a single
// *Catalog is safe for concurrent readers.
package catalog

import (
	"embed"
	"fmt"
	"slices"
	"sync"

	"github.com/jonathan/career-portal/internal/schemas"
	"github.com/jonathan/career-portal/internal/types"
	"gopkg.in/yaml.v3"
)

//go:embed data/catalog.yaml data/catalog.schema.json
var dataFiles embed.FS

const (
	catalogFile = "data/catalog.yaml"
	schemaFile  = "data/catalog.schema.json"
)

// FixedRoleRoadmap is a curated catalog entry for one canonical role.
type FixedRoleRoadmap struct {
	CanonicalRole              string               `yaml:"canonicalRole" json:"canonicalRole"`
	Aliases                    []string             `yaml:"aliases" json:"aliases"`
	StrengthProfile            string               `yaml:"strengthProfile" json:"strengthProfile"`
	CareerPersona              string               `yaml:"careerPersona" json:"careerPersona"`
	Roadmap                    types.RoadmapStages  `yaml:"roadmap" json:"roadmap"`
	ToolsToLearn               []string             `yaml:"toolsToLearn" json:"toolsToLearn"`
	Certifications             []string             `yaml:"certifications" json:"certifications"`
	RealWorldProjects          []string             `yaml:"realWorldProjects" json:"realWorldProjects"`
	PortfolioRequirements      []string             `yaml:"portfolioRequirements" json:"portfolioRequirements"`
	InterviewPreparationTopics []string             `yaml:"interviewPreparationTopics" json:"interviewPreparationTopics"`
	JobPlatformsToApply        []string             `yaml:"jobPlatformsToApply" json:"jobPlatformsToApply"`
	EstimatedTimeline          string               `yaml:"estimatedTimeline" json:"estimatedTimeline"`
	SalaryRange                string               `yaml:"salaryRange,omitempty" json:"salaryRange,omitempty"`
	RequiredTechnicalSkills    []string             `yaml:"requiredTechnicalSkills,omitempty" json:"requiredTechnicalSkills,omitempty"`
	RequiredSoftSkills         []string             `yaml:"requiredSoftSkills,omitempty" json:"requiredSoftSkills,omitempty"`
	InternshipStrategy         []string             `yaml:"internshipStrategy,omitempty" json:"internshipStrategy,omitempty"`
	FreelancingStrategy        []string             `yaml:"freelancingStrategy,omitempty" json:"freelancingStrategy,omitempty"`
	SalaryInsight              string               `yaml:"salaryInsight,omitempty" json:"salaryInsight,omitempty"`
	ResumeTips                 []string             `yaml:"resumeTips" json:"resumeTips"`
	JobReadyChecklist          []string             `yaml:"jobReadyChecklist,omitempty" json:"jobReadyChecklist,omitempty"`
	SkillGapPreview            []types.SkillGapItem `yaml:"skillGapPreview" json:"skillGapPreview"`
}

// KeywordRule maps a set of keywords to a canonical role.
type KeywordRule struct {
	Role     string   `yaml:"role"`
	Keywords []string `yaml:"keywords"`
}

type sharedLists struct {
	SoftSkills []string `yaml:"softSkills"`
}

type document struct {
	Shared   sharedLists        `yaml:"shared"`
	Keywords []KeywordRule      `yaml:"keywords"`
	Roles    []FixedRoleRoadmap `yaml:"roles"`
}

// Catalog is an immutable, loaded role catalog.
type Catalog struct {
	roles      []FixedRoleRoadmap
	byRole     map[string]int
	keywords   []KeywordRule
	softSkills []string
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalog, loading it on first call.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load()
	})
	return defaultCatalog, defaultErr
}

// MustDefault returns the embedded catalog and panics if it cannot be loaded.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(fmt.Sprintf("failed to load role catalog: %v", err))
	}
	return c
}

// Load reads, validates and decodes the embedded catalog.
func Load() (*Catalog, error) {
	data, err := dataFiles.ReadFile(catalogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	schema, err := dataFiles.ReadFile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog schema: %w", err)
	}
	return Parse(data, schema)
}

// Parse validates YAML catalog data against schema and builds a Catalog.
// Keyword rules must reference roles present in the catalog.
func Parse(data, schema []byte) (*Catalog, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	if err := schemas.ValidateDocument("catalog", schema, raw); err != nil {
		return nil, fmt.Errorf("catalog does not match schema: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	c := &Catalog{
		roles:      doc.Roles,
		byRole:     make(map[string]int, len(doc.Roles)),
		keywords:   doc.Keywords,
		softSkills: doc.Shared.SoftSkills,
	}
	for i, r := range doc.Roles {
		if _, dup := c.byRole[r.CanonicalRole]; dup {
			return nil, fmt.Errorf("duplicate canonical role %q", r.CanonicalRole)
		}
		c.byRole[r.CanonicalRole] = i
	}
	for _, rule := range doc.Keywords {
		if _, ok := c.byRole[rule.Role]; !ok {
			return nil, fmt.Errorf("keyword rule references unknown role %q", rule.Role)
		}
	}
	return c, nil
}

// Roles returns the canonical role names in catalog order.
func (c *Catalog) Roles() []string {
	out := make([]string, len(c.roles))
	for i, r := range c.roles {
		out[i] = r.CanonicalRole
	}
	return out
}

// Lookup returns the entry for an exact canonical role name.
func (c *Catalog) Lookup(canonicalRole string) (*FixedRoleRoadmap, bool) {
	i, ok := c.byRole[canonicalRole]
	if !ok {
		return nil, false
	}
	return c.roles[i].clone(), true
}

// clone returns a deep copy of e so callers cannot reach the catalog's slices.
func (e *FixedRoleRoadmap) clone() *FixedRoleRoadmap {
	out := *e
	out.Aliases = slices.Clone(e.Aliases)
	out.Roadmap = types.RoadmapStages{
		Beginner:     slices.Clone(e.Roadmap.Beginner),
		Intermediate: slices.Clone(e.Roadmap.Intermediate),
		Advanced:     slices.Clone(e.Roadmap.Advanced),
	}
	out.ToolsToLearn = slices.Clone(e.ToolsToLearn)
	out.Certifications = slices.Clone(e.Certifications)
	out.RealWorldProjects = slices.Clone(e.RealWorldProjects)
	out.PortfolioRequirements = slices.Clone(e.PortfolioRequirements)
	out.InterviewPreparationTopics = slices.Clone(e.InterviewPreparationTopics)
	out.JobPlatformsToApply = slices.Clone(e.JobPlatformsToApply)
	out.RequiredTechnicalSkills = slices.Clone(e.RequiredTechnicalSkills)
	out.RequiredSoftSkills = slices.Clone(e.RequiredSoftSkills)
	out.InternshipStrategy = slices.Clone(e.InternshipStrategy)
	out.FreelancingStrategy = slices.Clone(e.FreelancingStrategy)
	out.ResumeTips = slices.Clone(e.ResumeTips)
	out.JobReadyChecklist = slices.Clone(e.JobReadyChecklist)
	out.SkillGapPreview = slices.Clone(e.SkillGapPreview)
	return &out
}
