// internal/routing/slug.go
//
// Slug and path helpers.
//
// • MakeSlug(title) ─ converts arbitrary text into a URL-safe slug restricted
//   to ASCII a-z, 0-9 and “-”.  The catalog lint uses it to flag dataset
//   slugs that would not survive a round-trip through a URL.
// • BuildPath(parent, slug) ─ joins parent path + slug with a single “/” and
//   guarantees exactly one leading slash.
// • CoursePath(slug) / EnrollPath(slug) ─ canonical course URLs.
//
// Rules (MakeSlug)
// ----------------
// 1. Lower-case everything.
// 2. Convert any run of non-[a-z0-9] characters to one “-”.
// 3. Trim leading / trailing “-”.
// 4. If the result is empty, return "item".
// 5. Slugs are max 100 bytes.

package routing

import (
	"strings"
)

// CoursesRoot is the catalog mount point.
const CoursesRoot = "/courses"

// MakeSlug converts title → lower-kebab ASCII.
func MakeSlug(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastWasDash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastWasDash = false
		default:
			if !lastWasDash {
				b.WriteRune('-')
				lastWasDash = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "item"
	}
	if len(slug) > 100 {
		slug = strings.TrimRight(slug[:100], "-")
	}
	return slug
}

// IsSlug reports whether s is already in MakeSlug form.
func IsSlug(s string) bool {
	return s != "" && MakeSlug(s) == s
}

// BuildPath joins parent + slug ensuring exactly one leading slash and no
// duplicate separators.
func BuildPath(parent, slug string) string {
	parent = strings.Trim(parent, "/")
	slug = strings.Trim(slug, "/")

	switch {
	case parent == "" && slug == "":
		return "/"
	case parent == "":
		return "/" + slug
	case slug == "":
		return "/" + parent
	default:
		return "/" + parent + "/" + slug
	}
}

// CoursePath returns the detail URL for a course slug.
func CoursePath(slug string) string { return BuildPath(CoursesRoot, slug) }

// EnrollPath returns the enroll redirect URL for a course slug.
func EnrollPath(slug string) string { return BuildPath(CoursePath(slug), "enroll") }
