package catalog

// DefaultFeaturedLimit caps the home-page widget.
const DefaultFeaturedLimit = 6

// Featured returns up to limit courses flagged isFeatured, in dataset order.
// Featured cards need an id, title, and slug; an image is optional.
func Featured(courses []Course, limit int) []Course {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	var out []Course
	for _, c := range courses {
		if c.ID == 0 || c.Title == "" || c.Slug == "" || !c.IsFeatured {
			continue
		}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out
}
