// internal/catalog/engine.go
//
// Catalog filter/sort engine.
//
// Context
// -------
// Run is a pure function over a course list.  The processing order is fixed:
//
//  1. drop incomplete records (see Valid);
//  2. when the trimmed search term is non-empty, keep courses whose title,
//     description, or instructor contains the lower-cased term;
//  3. unless the instructor filter is "all", keep exact instructor matches;
//  4. stable sort by the requested key.
//
// Titles and instructors sort by locale-aware collation, prices ascending by
// exact decimal value.  Unknown sort keys keep the filtered order.  The
// input slice is never modified, so identical inputs always produce an
// identical output and results can be memoized (see Catalog).
package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// AllInstructors is the filter value meaning "no instructor restriction".
const AllInstructors = "all"

// SortKey selects the ordering of Run's output.
type SortKey string

const (
	SortName       SortKey = "name"
	SortTitle      SortKey = "title" // alias of SortName
	SortPrice      SortKey = "price"
	SortInstructor SortKey = "instructor"
)

// Query is the user's catalog view selection.
type Query struct {
	Search     string
	Instructor string
	Sort       SortKey
}

// Normalize fills defaults: instructor "all", sort by name.
func (q Query) Normalize() Query {
	if q.Instructor == "" {
		q.Instructor = AllInstructors
	}
	if q.Sort == "" {
		q.Sort = SortName
	}
	return q
}

// Filtered reports whether the query narrows the catalog.
func (q Query) Filtered() bool {
	return strings.TrimSpace(q.Search) != "" || (q.Instructor != "" && q.Instructor != AllInstructors)
}

// Result is the ordered view plus its size.  Total is the number of valid
// courses before search and instructor filtering.
type Result struct {
	Courses []Course `json:"courses"`
	Count   int      `json:"count"`
	Total   int      `json:"total"`
}

// Run applies q to courses using English collation.
func Run(courses []Course, q Query) Result {
	return RunIn(language.English, courses, q)
}

// RunIn applies q to courses, collating text keys for tag.
func RunIn(tag language.Tag, courses []Course, q Query) Result {
	out := make([]Course, 0, len(courses))
	for _, c := range courses {
		if Valid(c) {
			out = append(out, c)
		}
	}
	total := len(out)

	if strings.TrimSpace(q.Search) != "" {
		term := strings.ToLower(q.Search)
		out = keep(out, func(c Course) bool {
			return strings.Contains(strings.ToLower(c.Title), term) ||
				strings.Contains(strings.ToLower(c.Description), term) ||
				strings.Contains(strings.ToLower(c.Instructor), term)
		})
	}

	if q.Instructor != "" && q.Instructor != AllInstructors {
		out = keep(out, func(c Course) bool { return c.Instructor == q.Instructor })
	}

	sortCourses(tag, out, q.Sort)
	return Result{Courses: out, Count: len(out), Total: total}
}

// keep filters in place; in is always Run's private copy.
func keep(in []Course, pred func(Course) bool) []Course {
	out := in[:0]
	for _, c := range in {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out
}

func sortCourses(tag language.Tag, cs []Course, key SortKey) {
	switch key {
	case SortName, SortTitle:
		col := collate.New(tag)
		sort.SliceStable(cs, func(i, j int) bool {
			return col.CompareString(cs[i].Title, cs[j].Title) < 0
		})
	case SortInstructor:
		col := collate.New(tag)
		sort.SliceStable(cs, func(i, j int) bool {
			return col.CompareString(cs[i].Instructor, cs[j].Instructor) < 0
		})
	case SortPrice:
		sort.SliceStable(cs, func(i, j int) bool {
			return cs[i].Price.Cmp(cs[j].Price) < 0
		})
	}
}

// Instructors returns the distinct instructors of the valid courses, sorted.
func Instructors(courses []Course) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range courses {
		if !Valid(c) {
			continue
		}
		if _, dup := seen[c.Instructor]; dup {
			continue
		}
		seen[c.Instructor] = struct{}{}
		out = append(out, c.Instructor)
	}
	sort.Strings(out)
	return out
}
