// Package observability provides boxed, human-readable summaries for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/career-portal/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI summary mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// clip shortens s to width runes.
func clip(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// writeList writes a heading and up to limit bullet items.
func writeList(sb *strings.Builder, heading string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	for _, item := range items[:min(len(items), limit)] {
		sb.WriteString(fmt.Sprintf("  • %s\n", item))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
	}
	sb.WriteString("\n")
}

// PrintRoadmap outputs a summary of a resolved roadmap: the role, the first
// tasks of each stage and the largest skill gaps.
func (p *Printer) PrintRoadmap(query, match string, roadmap *types.CareerRoadmap) {
	if roadmap == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Query:    %s\n", query))
	sb.WriteString(fmt.Sprintf("Match:    %s\n", match))
	sb.WriteString(fmt.Sprintf("Career:   %s\n", roadmap.RecommendedCareer))
	sb.WriteString(fmt.Sprintf("Persona:  %s\n", roadmap.CareerPersona))
	sb.WriteString(fmt.Sprintf("Timeline: %s\n", roadmap.EstimatedTimeline))
	sb.WriteString("\n")

	writeList(&sb, "Beginner", roadmap.Stages.Beginner, 3)
	writeList(&sb, "Intermediate", roadmap.Stages.Intermediate, 3)
	writeList(&sb, "Advanced", roadmap.Stages.Advanced, 3)
	writeList(&sb, "Tools", roadmap.ToolsToLearn, maxItemsToShow)

	if len(roadmap.SkillGapPreview) > 0 {
		sb.WriteString("Skill gaps:\n")
		for _, gap := range roadmap.SkillGapPreview[:min(len(roadmap.SkillGapPreview), maxItemsToShow)] {
			sb.WriteString(fmt.Sprintf("  %-30s %3d%%\n", clip(gap.Skill, 30), gap.Gap))
		}
	}

	title := "ROADMAP"
	if !roadmap.Supported() {
		title = "ROADMAP (unsupported role)"
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRoles outputs the supported role names.
func (p *Printer) PrintRoles(roles []string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d supported roles:\n\n", len(roles)))
	for _, role := range roles {
		sb.WriteString(fmt.Sprintf("• %s\n", role))
	}
	p.printBox("SUPPORTED ROLES", strings.TrimSuffix(sb.String(), "\n"))
}
