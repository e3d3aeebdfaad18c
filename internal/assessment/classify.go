package assessment

import "strings"

// Category is a coarse domain label for a career interest.
type Category string

// Categories
const (
	CategorySports     Category = "sports"
	CategoryTechnology Category = "technology"
	CategoryBusiness   Category = "business"
	CategoryGeneral    Category = "general"
)

var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategorySports, []string{"cricket", "sports", "athlete"}},
	{CategoryTechnology, []string{"developer", "software", "engineer", "program", "ai"}},
	{CategoryBusiness, []string{"business", "entrepreneur", "startup"}},
}

// DetectCategory classifies a free-text career interest. The first category
// with a keyword contained in the lowercased text wins.
func DetectCategory(text string) Category {
	value := strings.ToLower(text)
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(value, kw) {
				return entry.category
			}
		}
	}
	return CategoryGeneral
}
