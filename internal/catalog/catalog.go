// internal/catalog/catalog.go
//
// Loaded catalog with memoized queries.
//
// Context
// -------
// Open reads the dataset once at boot.  A missing file is a boot error; a
// malformed document is not: the Catalog keeps the shape error and every
// page built on it renders the "Error Loading Courses" state until the next
// deploy.
//
// Query results are memoized per normalized query in an LRU.  Concurrent
// misses for the same query collapse into one Run via singleflight.
//
// Instrumentation
// ---------------
//   - catalog_queries_total{outcome="hit|miss"}
//   - catalog_courses gauge, set on load.
package catalog

import (
	"fmt"
	"os"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"

	"github.com/yanizio/cadence/internal/cache"
	"github.com/yanizio/cadence/internal/metrics"
)

// Options tunes a Catalog.  Zero values pick defaults.
type Options struct {
	FeaturedLimit int
	CacheEntries  int
	Locale        string // BCP 47 or POSIX ("en_US"); defaults to English
}

// Catalog is an immutable, concurrency-safe view of one dataset.
type Catalog struct {
	courses     []Course // decoded, not yet validated
	valid       []Course
	instructors []string
	bySlug      map[string]Course
	err         error

	tag      language.Tag
	featured int

	memo  *cache.LRU[string, Result]
	group singleflight.Group
}

// Open reads and decodes the dataset at path.
func Open(path string, opts Options) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c := New(data, opts)
	if c.err != nil {
		zap.S().Errorw("catalog dataset invalid", "file", path, "err", c.err)
	} else {
		zap.S().Infow("catalog loaded", "file", path, "courses", len(c.valid), "records", len(c.courses))
	}
	return c, nil
}

// New builds a Catalog from raw dataset bytes.  Shape errors are kept and
// reported by Err.
func New(data []byte, opts Options) *Catalog {
	if opts.FeaturedLimit <= 0 {
		opts.FeaturedLimit = DefaultFeaturedLimit
	}
	if opts.CacheEntries <= 0 {
		opts.CacheEntries = 256
	}

	c := &Catalog{
		tag:      parseLocale(opts.Locale),
		featured: opts.FeaturedLimit,
		memo:     cache.New[string, Result](opts.CacheEntries),
		bySlug:   make(map[string]Course),
	}

	courses, err := Decode(data)
	if err != nil {
		c.err = err
		metrics.CatalogCourses.Set(0)
		return c
	}

	c.courses = courses
	for _, cr := range courses {
		if !Valid(cr) {
			continue
		}
		c.valid = append(c.valid, cr)
		if _, dup := c.bySlug[cr.Slug]; !dup {
			c.bySlug[cr.Slug] = cr
		}
	}
	c.instructors = Instructors(courses)
	metrics.CatalogCourses.Set(float64(len(c.valid)))

	for _, issue := range Lint(courses) {
		zap.S().Warnw("catalog lint", "issue", issue)
	}
	return c
}

// Err returns the dataset shape error, if any.
func (c *Catalog) Err() error { return c.err }

// Total is the number of valid courses.
func (c *Catalog) Total() int { return len(c.valid) }

// Query runs the engine for q, serving repeated queries from the memo.
func (c *Catalog) Query(q Query) (Result, error) {
	if c.err != nil {
		return Result{}, c.err
	}
	q = q.Normalize()
	key := q.Search + "\x00" + q.Instructor + "\x00" + string(q.Sort)

	if r, ok := c.memo.Get(key); ok {
		metrics.CatalogQueriesTotal.WithLabelValues("hit").Inc()
		return cloneResult(r), nil
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		r := RunIn(c.tag, c.courses, q)
		c.memo.Add(key, r)
		return r, nil
	})
	metrics.CatalogQueriesTotal.WithLabelValues("miss").Inc()
	return cloneResult(v.(Result)), nil
}

// Instructors lists distinct instructors of the valid courses, sorted.
func (c *Catalog) Instructors() []string { return slices.Clone(c.instructors) }

// Featured returns the home-page widget courses.
func (c *Catalog) Featured() ([]Course, error) {
	if c.err != nil {
		return nil, c.err
	}
	return Featured(c.courses, c.featured), nil
}

// BySlug finds a valid course by slug.  With duplicate slugs the first
// record wins.
func (c *Catalog) BySlug(slug string) (Course, bool) {
	cr, ok := c.bySlug[slug]
	return cr, ok
}

func cloneResult(r Result) Result {
	r.Courses = slices.Clone(r.Courses)
	return r
}

func parseLocale(s string) language.Tag {
	if s == "" {
		return language.English
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.English
	}
	return tag
}
