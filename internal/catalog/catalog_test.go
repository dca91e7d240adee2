package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDataset = `{
  "courses": [
    {"id": 1, "title": "Guitar Basics", "slug": "guitar-basics", "description": "Chords and strumming",
     "price": 49.99, "instructor": "Ann Lee", "isFeatured": true, "image": "/images/guitar.jpg"},
    {"id": 2, "title": "Jazz Piano", "slug": "jazz-piano", "description": "Voicings",
     "price": 79, "instructor": "Bob Ray", "isFeatured": true},
    {"id": 3, "title": "Drums 101", "slug": "drums-101", "description": "Grooves",
     "price": 39, "instructor": "Ann Lee", "isFeatured": false, "image": "/images/drums.jpg"},
    "not an object",
    {"id": "seven", "title": "Bad id type", "slug": "bad", "image": "/x.jpg"},
    {"id": 4, "title": "", "slug": "no-title", "image": "/x.jpg", "isFeatured": true}
  ]
}`

func TestDecodeShape(t *testing.T) {
	for _, doc := range []string{`{}`, `{"courses": {}}`, `{"courses": null}`, `[]`, `nope`} {
		_, err := Decode([]byte(doc))
		assert.True(t, errors.Is(err, ErrInvalidDataset), "doc %s: %v", doc, err)
	}

	cs, err := Decode([]byte(sampleDataset))
	require.NoError(t, err)
	assert.Len(t, cs, 4, "non-object and mistyped entries are dropped")
	assert.Equal(t, "$49.99", cs[0].PriceLabel())
	assert.Equal(t, "$79", cs[1].PriceLabel())
}

func TestCatalogQueryAndMemo(t *testing.T) {
	c := New([]byte(sampleDataset), Options{CacheEntries: 4})
	require.NoError(t, c.Err())
	assert.Equal(t, 2, c.Total())
	assert.Equal(t, []string{"Ann Lee"}, c.Instructors())

	r1, err := c.Query(Query{Sort: SortPrice})
	require.NoError(t, err)
	assert.Equal(t, []string{"Drums 101", "Guitar Basics"}, titles(r1.Courses))

	r1.Courses[0].Title = "mutated"
	r2, err := c.Query(Query{Sort: SortPrice, Instructor: AllInstructors})
	require.NoError(t, err)
	assert.Equal(t, "Drums 101", r2.Courses[0].Title, "memo must hand out copies")
}

func TestCatalogConcurrentQueries(t *testing.T) {
	c := New([]byte(sampleDataset), Options{})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := c.Query(Query{Search: "guitar"})
			assert.NoError(t, err)
			assert.Equal(t, 1, r.Count)
		}()
	}
	wg.Wait()
}

func TestCatalogFeatured(t *testing.T) {
	c := New([]byte(sampleDataset), Options{})
	f, err := c.Featured()
	require.NoError(t, err)
	// Jazz Piano has no image but still qualifies; the untitled record does not.
	assert.Equal(t, []string{"Guitar Basics", "Jazz Piano"}, titles(f))
}

func TestFeaturedLimit(t *testing.T) {
	var cs []Course
	for i := 1; i <= 9; i++ {
		cr := course(i, string(rune('A'+i)), "x", 1)
		cr.IsFeatured = true
		cs = append(cs, cr)
	}
	assert.Len(t, Featured(cs, 0), DefaultFeaturedLimit)
	assert.Len(t, Featured(cs, 2), 2)
}

func TestCatalogBySlug(t *testing.T) {
	c := New([]byte(sampleDataset), Options{})
	cr, ok := c.BySlug("guitar-basics")
	require.True(t, ok)
	assert.Equal(t, 1, cr.ID)
	_, ok = c.BySlug("jazz-piano")
	assert.False(t, ok, "incomplete course has no detail page")
}

func TestCatalogInvalidDataset(t *testing.T) {
	c := New([]byte(`{"lessons": []}`), Options{})
	assert.ErrorIs(t, c.Err(), ErrInvalidDataset)
	_, err := c.Query(Query{})
	assert.ErrorIs(t, err, ErrInvalidDataset)
	_, err = c.Featured()
	assert.ErrorIs(t, err, ErrInvalidDataset)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "courses.json")
	require.NoError(t, os.WriteFile(p, []byte(sampleDataset), 0o644))

	c, err := Open(p, Options{Locale: "en_US"})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Total())

	_, err = Open(filepath.Join(dir, "missing.json"), Options{})
	assert.Error(t, err)
}

func TestLint(t *testing.T) {
	a := course(1, "A", "x", 1)
	b := course(1, "B", "x", -5)
	b.Slug = a.Slug
	c := course(2, "C", "x", 1)
	c.Slug = "Not A Slug"
	issues := Lint([]Course{a, b, c})
	assert.Len(t, issues, 4)
}
