package pipeline

import (
	"strings"

	"filmawards/internal/config"
	"filmawards/internal/util"
)

// Classifier decides which headings name tracked categories.
type Classifier struct {
	majorCategories []string
	personKeywords  []string
}

func NewClassifier(cfg config.Config) Classifier {
	return Classifier{
		majorCategories: cfg.MajorCategories,
		personKeywords:  cfg.PersonKeywords,
	}
}

// IsMajorCategory matches when any configured category name occurs in text,
// ignoring case.
func (c Classifier) IsMajorCategory(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	return util.ContainsFold(text, c.majorCategories)
}

func (c Classifier) IsPersonCategory(text string) bool {
	return util.ContainsFold(text, c.personKeywords)
}

// RoleForCategory maps a category to the role of its nominee. The first
// matching rule wins.
func RoleForCategory(category string) string {
	lower := strings.ToLower(category)
	switch {
	case strings.Contains(lower, "director"):
		return "Director"
	case strings.Contains(lower, "actor") || strings.Contains(lower, "actress"):
		if strings.Contains(lower, "supporting") {
			return "Supporting Actor"
		}
		return "Lead Actor"
	case strings.Contains(lower, "screenplay") || strings.Contains(lower, "writer"):
		return "Writer"
	case strings.Contains(lower, "cinematography"):
		return "Cinematographer"
	case strings.Contains(lower, "editing"):
		return "Editor"
	case strings.Contains(lower, "score") || strings.Contains(lower, "song"):
		return "Composer"
	default:
		return "Unknown"
	}
}
