package assessment

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/career-portal/internal/types"
)

// Follow-up questions.
const (
	InspirationQuestion = "What inspired you to choose this career?"
	SportsQuestion      = "What level are you currently playing at (school, district, state)?"
	SoftwareQuestion    = "Which area interests you more: frontend, backend, or AI?"
	BusinessQuestion    = "Do you prefer startups or corporate environments?"
	FallbackQuestion    = "What skills do you believe are your strongest?"
)

// AlternateQuestions are tried in order when the primary follow-up was
// already asked.
var AlternateQuestions = []string{
	"What is your current skill level in this career path?",
	"How much time can you commit weekly to improve in this field?",
	"What milestone do you want to achieve in the next 12 months?",
	"What kind of guidance or resources do you need most right now?",
}

var (
	nonWordNonSpace = regexp.MustCompile(`[^\w\s]`)
	spaceRun        = regexp.MustCompile(`\s+`)
)

// NormalizeQuestion lowercases text, strips characters that are neither word
// characters nor whitespace, collapses whitespace and trims.
func NormalizeQuestion(text string) string {
	text = strings.ToLower(text)
	text = nonWordNonSpace.ReplaceAllString(text, "")
	text = spaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// NextQuestion returns the follow-up for the answer just given. step is the
// number of answers collected so far.
func NextQuestion(previousAnswer string, step int) string {
	if step == 1 {
		return InspirationQuestion
	}

	answer := strings.ToLower(previousAnswer)
	switch {
	case strings.Contains(answer, "cricket"), strings.Contains(answer, "sports"):
		return SportsQuestion
	case strings.Contains(answer, "developer"), strings.Contains(answer, "software"):
		return SoftwareQuestion
	case strings.Contains(answer, "business"), strings.Contains(answer, "entrepreneur"):
		return BusinessQuestion
	default:
		return FallbackQuestion
	}
}

// NextQuestionWithoutDuplicates returns NextQuestion unless it normalizes to a
// question already asked in history or stored in answers, in which case the
// first unused alternate is returned. When every alternate is used, a
// step-numbered question is synthesized. The boolean reports whether a
// substitute was used.
func NextQuestionWithoutDuplicates(previousAnswer string, step int, history []types.HistoryMessage, answers []types.QAPair) (string, bool) {
	asked := make(map[string]bool, len(history)+len(answers))
	for _, msg := range history {
		if msg.Role == types.RoleAssistant {
			asked[NormalizeQuestion(msg.Content)] = true
		}
	}
	for _, qa := range answers {
		asked[NormalizeQuestion(qa.Question)] = true
	}

	primary := NextQuestion(previousAnswer, step)
	if !asked[NormalizeQuestion(primary)] {
		return primary, false
	}

	for _, candidate := range AlternateQuestions {
		if !asked[NormalizeQuestion(candidate)] {
			return candidate, true
		}
	}

	// Step numbers only grow within a session, so this collides only if the
	// stored history was edited out of band.
	terminal := terminalQuestion(step, 0)
	for n := 1; asked[NormalizeQuestion(terminal)]; n++ {
		terminal = terminalQuestion(step, n)
	}
	return terminal, true
}

func terminalQuestion(step, attempt int) string {
	if attempt == 0 {
		return fmt.Sprintf("What is your next most important goal for this career path (Step %d)?", step)
	}
	return fmt.Sprintf("What is your next most important goal for this career path (Step %d.%d)?", step, attempt)
}
