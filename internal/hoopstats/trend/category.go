package trend

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidCategory = errors.New("invalid category")

// Category is a logging bucket grouping related metrics.
type Category string

const (
	CategoryGames        Category = "games"
	CategoryPractice     Category = "practice"
	CategoryConditioning Category = "conditioning"
	CategoryDribbling    Category = "dribbling"
)

// Categories lists all categories in dashboard order.
var Categories = []Category{
	CategoryGames,
	CategoryPractice,
	CategoryConditioning,
	CategoryDribbling,
}

func (c Category) IsValid() bool {
	switch c {
	case CategoryGames, CategoryPractice, CategoryConditioning, CategoryDribbling:
		return true
	default:
		return false
	}
}

// Title is the human readable name, also used as the worksheet name in spreadsheet storage.
func (c Category) Title() string {
	switch c {
	case CategoryGames:
		return "Games"
	case CategoryPractice:
		return "Shooting Practice"
	case CategoryConditioning:
		return "Conditioning"
	case CategoryDribbling:
		return "Dribbling"
	default:
		return string(c)
	}
}

// ParseCategory accepts either the category id or its title, case insensitive.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	c := Category(strings.ToLower(s))
	if c.IsValid() {
		return c, nil
	}
	for _, cat := range Categories {
		if strings.EqualFold(cat.Title(), s) {
			return cat, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}
