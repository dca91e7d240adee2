package view

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yanizio/cadence/internal/config"
	"github.com/yanizio/cadence/internal/theme"
	"github.com/yanizio/cadence/internal/widget"
)

func testSite() config.Site {
	return config.Site{
		Name:        "Cadence",
		Title:       "Cadence Music School",
		Description: "Lessons for every level.",
		Locale:      "en_US",
		BaseURL:     "https://cadence.example",
	}
}

func newTestView(t *testing.T) *View {
	t.Helper()
	th, err := theme.Load("")
	if err != nil {
		t.Fatal(err)
	}
	v, err := New(th, testSite(), "")
	if err != nil {
		t.Fatal(err)
	}
	return v
}

type echoWidget struct{}

func (echoWidget) ID() string { return "test/echo" }
func (echoWidget) Render(_ *http.Request, p map[string]any) (template.HTML, error) {
	return template.HTML("<b>echo</b>"), nil
}

func TestNotFound(t *testing.T) {
	v := newTestView(t)
	w := httptest.NewRecorder()
	v.NotFound(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		"<title>Page Not Found | Cadence</title>",
		`content="noindex"`,
		`href="https://cadence.example/missing"`,
		"/assets/css/site.css",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestInternalHandler(t *testing.T) {
	v := newTestView(t)
	w := httptest.NewRecorder()
	v.Internal().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "An unexpected error occurred.") {
		t.Fatal("500 message missing")
	}
}

func TestRenderHomeWithWidget(t *testing.T) {
	v := newTestView(t)
	widget.Register(featuredStub{})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	p := v.NewPage(r, "home", "", "")
	w := httptest.NewRecorder()
	if err := v.Render(w, "home", p, http.StatusOK); err != nil {
		t.Fatal(err)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<title>Cadence Music School</title>") {
		t.Error("default title missing")
	}
	if !strings.Contains(body, "featured-stub") {
		t.Error("widget output missing")
	}
}

type featuredStub struct{}

func (featuredStub) ID() string { return "courses/featured" }
func (featuredStub) Render(*http.Request, map[string]any) (template.HTML, error) {
	return template.HTML(`<div class="featured-stub"></div>`), nil
}

func TestWidgetFunc(t *testing.T) {
	widget.Register(echoWidget{})
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := widgetFunc(r, "test/echo"); got != "<b>echo</b>" {
		t.Fatalf("widgetFunc = %q", got)
	}
	if got := widgetFunc(r, "test/none"); got != "<!-- widget not found -->" {
		t.Fatalf("missing widget = %q", got)
	}
}

func TestRenderWidgetTemplate(t *testing.T) {
	v := newTestView(t)
	html, err := v.RenderWidget("featured", map[string]any{"Err": "boom", "Courses": nil})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(html), "Unable to load featured courses") {
		t.Fatalf("fallback text missing: %s", html)
	}
}

func TestBrokenOverrideFailsNew(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "pages"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "pages", "home.html"), []byte(`{{define "content"}}{{nope}}{{end}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	th, err := theme.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(th, testSite(), ""); err == nil {
		t.Fatal("expected parse error for undefined function")
	}
}

func TestDict(t *testing.T) {
	m := dict("a", 1, "b", "two", "dangling")
	if len(m) != 2 || m["a"] != 1 || m["b"] != "two" {
		t.Fatalf("dict = %v", m)
	}
}
