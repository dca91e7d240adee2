package catalog

import (
	"fmt"

	"github.com/yanizio/cadence/internal/routing"
)

// Lint reports dataset problems that do not stop the site from serving:
// duplicate ids or slugs, negative prices, and slugs that are not URL-safe.
// Uniqueness is assumed by the pages, never enforced.
func Lint(courses []Course) []string {
	var issues []string
	ids := make(map[int]int)
	slugs := make(map[string]int)

	for i, c := range courses {
		if prev, dup := ids[c.ID]; dup && c.ID != 0 {
			issues = append(issues, fmt.Sprintf("course[%d]: id %d duplicates course[%d]", i, c.ID, prev))
		} else {
			ids[c.ID] = i
		}
		if prev, dup := slugs[c.Slug]; dup && c.Slug != "" {
			issues = append(issues, fmt.Sprintf("course[%d]: slug %q duplicates course[%d]", i, c.Slug, prev))
		} else {
			slugs[c.Slug] = i
		}
		if c.Price.IsNegative() {
			issues = append(issues, fmt.Sprintf("course[%d]: negative price %s", i, c.Price))
		}
		if c.Slug != "" && !routing.IsSlug(c.Slug) {
			issues = append(issues, fmt.Sprintf("course[%d]: slug %q is not URL-safe", i, c.Slug))
		}
	}
	return issues
}
