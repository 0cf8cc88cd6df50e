// Package places serves city attractions: filtering the curated list and
// generating fresh lists with a hosted model, falling back to curated data.
package places

import (
	"strings"

	"github.com/welcometomycity/citycore/internal/models"
)

// CategoryAll selects every category in Filter
const CategoryAll = "all"

// Filter returns places in category whose name or description contains query.
// An empty category or "all" matches every category; an empty query matches everything.
func Filter(places []models.Place, category, query string) []models.Place {
	q := strings.ToLower(strings.TrimSpace(query))
	anyCategory := category == "" || strings.EqualFold(category, CategoryAll)

	filtered := []models.Place{}
	for _, p := range places {
		if !anyCategory && !strings.EqualFold(string(p.Category), category) {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

// CountByCategory returns how many places fall in each category
func CountByCategory(places []models.Place) map[models.Category]int {
	counts := make(map[models.Category]int, len(models.AllCategories()))
	for _, c := range models.AllCategories() {
		counts[c] = 0
	}
	for _, p := range places {
		counts[p.Category]++
	}
	return counts
}
