// internal/view/render.go
//
// Central view engine: page assembly, template lookup through the theme's
// override chain, func-map injection, and an LRU of parsed template sets.
//
// Public helpers
// --------------
//   - NewPage        – per-request page value with <head> defaults seeded.
//   - Render         – execute layout + page and write the response.
//   - RenderWidget   – return template.HTML for a widget fragment.
//   - Error/NotFound – the full-page error state.
//
// Lookup
// ------
// Each page is its own set: layout.html plus pages/<name>.html, which
// defines "content".  Widgets are standalone sets parsed from
// widgets/<name>.html and define "widgets/<name>".  The theme FS already
// resolves override-before-embedded per file.
//
// Rendering goes to a buffer first so a template error never leaves a
// half-written page; the caller gets the error and the error page instead.

package view

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/yanizio/cadence/internal/cache"
	"github.com/yanizio/cadence/internal/config"
	"github.com/yanizio/cadence/internal/head"
	"github.com/yanizio/cadence/internal/logger"
	"github.com/yanizio/cadence/internal/requestinfo"
	"github.com/yanizio/cadence/internal/routing"
	"github.com/yanizio/cadence/internal/theme"
	"github.com/yanizio/cadence/internal/widget"
)

//
// types
//

// Page is the value every page template receives.
type Page struct {
	Head           *head.Builder
	Site           config.Site
	Info           *requestinfo.RequestInfo
	Request        *http.Request
	Nav            string // "home", "courses", "contact"
	CaptchaSiteKey string
	Year           int
	Data           any
}

// ErrorData feeds pages/error.html.
type ErrorData struct {
	Status  int
	Title   string
	Message string
}

// View renders pages for one theme and site.
type View struct {
	theme      *theme.Theme
	site       config.Site
	captchaKey string
	sets       *cache.LRU[string, *template.Template]
}

// setCapacity bounds parsed sets; pages plus widgets fit comfortably.
const setCapacity = 64

// New returns a View.  Every theme override is parsed here so broken
// overrides fail startup.
func New(th *theme.Theme, site config.Site, captchaSiteKey string) (*View, error) {
	v := &View{
		theme:      th,
		site:       site,
		captchaKey: captchaSiteKey,
		sets:       cache.New[string, *template.Template](setCapacity),
	}
	for _, f := range th.Overrides {
		if _, err := template.New("").Funcs(v.funcs()).ParseFS(th.FS, f); err != nil {
			return nil, fmt.Errorf("view: parse override %s: %w", f, err)
		}
	}
	return v, nil
}

//
// public helpers
//

// NewPage seeds a Page for r.  An empty title uses the site title; any
// other title is suffixed with the site name.
func (v *View) NewPage(r *http.Request, nav, title, description string) *Page {
	return v.newPage(r, nav, title, description, "")
}

func (v *View) newPage(r *http.Request, nav, title, description, robots string) *Page {
	full := v.site.Title
	if title != "" {
		full = title + " | " + v.site.Name
	}
	if description == "" {
		description = v.site.Description
	}

	h := head.New()
	h.Link(`<link rel="icon" href="/favicon.ico">`)
	h.SEO(head.SEO{
		SiteName:    v.site.Name,
		Title:       full,
		Description: description,
		Keywords:    v.site.Keywords,
		Robots:      robots,
		Canonical:   v.canonical(r),
		Locale:      v.site.Locale,
	})

	return &Page{
		Head:           h,
		Site:           v.site,
		Info:           requestinfo.FromContext(r.Context()),
		Request:        r,
		Nav:            nav,
		CaptchaSiteKey: v.captchaKey,
		Year:           time.Now().Year(),
	}
}

// Render executes layout + pages/<name>.html with p and writes status.
func (v *View) Render(w http.ResponseWriter, name string, p *Page, status int) error {
	t, err := v.load("page:"+name, "layout.html", path.Join("pages", name+".html"))
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		return fmt.Errorf("view: execute %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}

// RenderWidget executes widgets/<name>.html and returns the fragment.
func (v *View) RenderWidget(name string, data any) (template.HTML, error) {
	t, err := v.load("widget:"+name, path.Join("widgets", name+".html"))
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "widgets/"+name, data); err != nil {
		return "", fmt.Errorf("view: execute widget %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

// Error renders the full-page error state.  If the error page itself fails
// the client still gets a plain-text status.
func (v *View) Error(w http.ResponseWriter, r *http.Request, status int, title, message string) {
	p := v.newPage(r, "", title, "", "noindex")
	p.Data = ErrorData{Status: status, Title: title, Message: message}
	if err := v.Render(w, "error", p, status); err != nil {
		logger.FromContext(r.Context()).Errorw("render error page", "err", err)
		http.Error(w, title, status)
	}
}

// NotFound renders the 404 page.
func (v *View) NotFound(w http.ResponseWriter, r *http.Request) {
	v.Error(w, r, http.StatusNotFound, "Page Not Found",
		"The page you are looking for does not exist.")
}

// Internal is an http.Handler rendering the 500 page; middleware.Recover
// uses it after a panic.
func (v *View) Internal() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v.Error(w, r, http.StatusInternalServerError, "Something Went Wrong",
			"An unexpected error occurred. Please try again.")
	})
}

//
// internal: load
//

func (v *View) load(key string, files ...string) (*template.Template, error) {
	if t, ok := v.sets.Get(key); ok {
		return t, nil
	}
	t, err := template.New(path.Base(files[0])).Funcs(v.funcs()).ParseFS(v.theme.FS, files...)
	if err != nil {
		return nil, fmt.Errorf("view: parse %s: %w", strings.Join(files, ", "), err)
	}
	v.sets.Add(key, t)
	return t, nil
}

func (v *View) canonical(r *http.Request) string {
	if v.site.BaseURL == "" {
		return ""
	}
	return strings.TrimSuffix(v.site.BaseURL, "/") + r.URL.Path
}

//
// func-map builders
//

func (v *View) funcs() template.FuncMap {
	fm := theme.FuncMap(v.theme.AssetFunc)
	fm["dict"] = dict
	fm["widget"] = widgetFunc
	fm["coursePath"] = routing.CoursePath
	fm["enrollPath"] = routing.EnrollPath
	return fm
}

// dict builds a map in templates: {{ dict "k" 1 "k2" "v" }}.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		m[key] = kv[i+1]
	}
	return m
}

// widgetFunc renders a registered widget and returns safe HTML.  Errors are
// hidden behind <!-- comments --> so visitors never see internals.
func widgetFunc(r *http.Request, key string, kv ...any) template.HTML {
	w := widget.Lookup(key)
	if w == nil {
		return template.HTML("<!-- widget not found -->")
	}
	html, err := w.Render(r, dict(kv...))
	if err != nil {
		logger.FromContext(r.Context()).Warnw("widget render failed", "widget", key, "err", err)
		return template.HTML("<!-- widget error -->")
	}
	return html
}
