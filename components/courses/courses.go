// components/courses/courses.go
//
// Courses component: catalog listing, course detail, enroll redirect, and
// the JSON catalog API.
//
// Routes
// ------
//   GET /courses                  – filter/sort page (?q=, ?instructor=, ?sort=)
//   GET /courses/{slug}           – detail page, tracks course_interaction{view}
//   GET /courses/{slug}/enroll    – tracks course_interaction{enroll}, 303 to
//                                   /contact with the subject prefilled
//   GET /api/courses              – same query parameters, JSON Result
//   GET /api/courses/featured     – featured widget courses as JSON
//
// A dataset shape error renders the full-page "Error Loading Courses" state
// (500) on pages and a 500 JSON error on the API.
package courses

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/cadence/components/courses/widgets"
	"github.com/yanizio/cadence/internal/analytics"
	"github.com/yanizio/cadence/internal/catalog"
	"github.com/yanizio/cadence/internal/component"
	"github.com/yanizio/cadence/internal/logger"
	"github.com/yanizio/cadence/internal/view"
	"github.com/yanizio/cadence/internal/widget"
)

// compile-time assertions
var (
	_ component.Component   = (*Comp)(nil)
	_ component.Initializer = (*Comp)(nil)
)

// ErrorTitle heads the full-page dataset error.
const ErrorTitle = "Error Loading Courses"

// Comp implements component.Component.
type Comp struct {
	catalog *catalog.Catalog
	tracker *analytics.Tracker
	view    *view.View
}

func (c *Comp) Name() string { return "courses" }

// Init stores deps and registers the featured widget.
func (c *Comp) Init(d component.Deps) error {
	if d.Catalog == nil || d.View == nil {
		return errors.New("catalog and view are required")
	}
	c.catalog, c.tracker, c.view = d.Catalog, d.Tracker, d.View
	widget.Register(&widgets.Featured{Catalog: d.Catalog, View: d.View})
	return nil
}

func (c *Comp) Routes(r chi.Router) {
	r.Get("/courses", c.list)
	r.Get("/courses/{slug}", c.detail)
	r.Get("/courses/{slug}/enroll", c.enroll)

	r.Route("/api/courses", func(api chi.Router) {
		api.Get("/", c.apiList)
		api.Get("/featured", c.apiFeatured)
	})
}

//
// pages
//

// SortOption is one entry of the sort select.
type SortOption struct {
	Value string
	Label string
}

// SortOptions lists the sort keys offered on the page.
var SortOptions = []SortOption{
	{string(catalog.SortName), "Name"},
	{string(catalog.SortPrice), "Price"},
	{string(catalog.SortInstructor), "Instructor"},
}

// ListData feeds pages/courses.html.
type ListData struct {
	Query       catalog.Query
	Result      catalog.Result
	Instructors []string
	Filtered    bool
	SortOptions []SortOption
}

func (c *Comp) list(w http.ResponseWriter, r *http.Request) {
	q := queryFrom(r.URL.Query())
	res, err := c.catalog.Query(q)
	if err != nil {
		c.datasetError(w, r, err)
		return
	}

	p := c.view.NewPage(r, "courses", "Courses", "")
	p.Data = ListData{
		Query:       q.Normalize(),
		Result:      res,
		Instructors: c.catalog.Instructors(),
		Filtered:    q.Filtered(),
		SortOptions: SortOptions,
	}
	c.render(w, r, "courses", p)
}

func (c *Comp) detail(w http.ResponseWriter, r *http.Request) {
	course, ok := c.lookup(w, r)
	if !ok {
		return
	}
	_ = c.tracker.TrackCourseInteraction(course.ID, analytics.ActionView, map[string]any{
		"course_title": course.Title,
	})

	p := c.view.NewPage(r, "courses", course.Title, course.Description)
	p.Data = course
	c.render(w, r, "course", p)
}

func (c *Comp) enroll(w http.ResponseWriter, r *http.Request) {
	course, ok := c.lookup(w, r)
	if !ok {
		return
	}
	_ = c.tracker.TrackCourseInteraction(course.ID, analytics.ActionEnroll, map[string]any{
		"course_title": course.Title,
	})
	target := "/contact?" + url.Values{"subject": {"Enrollment: " + course.Title}}.Encode()
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// lookup resolves {slug}, writing the error or 404 page when it cannot.
func (c *Comp) lookup(w http.ResponseWriter, r *http.Request) (catalog.Course, bool) {
	if err := c.catalog.Err(); err != nil {
		c.datasetError(w, r, err)
		return catalog.Course{}, false
	}
	course, ok := c.catalog.BySlug(chi.URLParam(r, "slug"))
	if !ok {
		c.view.NotFound(w, r)
		return catalog.Course{}, false
	}
	return course, true
}

func (c *Comp) datasetError(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContext(r.Context()).Errorw("catalog unavailable", "err", err)
	c.view.Error(w, r, http.StatusInternalServerError, ErrorTitle, err.Error())
}

func (c *Comp) render(w http.ResponseWriter, r *http.Request, name string, p *view.Page) {
	if err := c.view.Render(w, name, p, http.StatusOK); err != nil {
		logger.FromContext(r.Context()).Errorw("render failed", "page", name, "err", err)
		c.view.Internal().ServeHTTP(w, r)
		return
	}
	c.tracker.TrackPageView(analytics.PageViewFrom(p.Info, p.Head.TitleText()))
}

//
// API
//

func (c *Comp) apiList(w http.ResponseWriter, r *http.Request) {
	res, err := c.catalog.Query(queryFrom(r.URL.Query()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (c *Comp) apiFeatured(w http.ResponseWriter, _ *http.Request) {
	courses, err := c.catalog.Featured()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"courses": courses})
}

//
// helpers
//

func queryFrom(v url.Values) catalog.Query {
	return catalog.Query{
		Search:     v.Get("q"),
		Instructor: v.Get("instructor"),
		Sort:       catalog.SortKey(v.Get("sort")),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Register component at package init.
func init() {
	component.Register(&Comp{})
}
