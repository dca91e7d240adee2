package home

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/cadence/internal/component"
	"github.com/yanizio/cadence/internal/config"
	"github.com/yanizio/cadence/internal/theme"
	"github.com/yanizio/cadence/internal/view"
)

func setup(t *testing.T) http.Handler {
	t.Helper()
	th, err := theme.Load("")
	if err != nil {
		t.Fatal(err)
	}
	v, err := view.New(th, config.Site{Name: "Cadence", Title: "Cadence Music School", Description: "Lessons for every level."}, "")
	if err != nil {
		t.Fatal(err)
	}
	c := &Comp{}
	if err := c.Init(component.Deps{View: v}); err != nil {
		t.Fatal(err)
	}
	r := chi.NewRouter()
	c.Routes(r)
	return r
}

func TestIndex(t *testing.T) {
	h := setup(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"<title>Cadence Music School</title>", "Lessons for every level.", "Featured Courses"} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestNotFoundAndMethod(t *testing.T) {
	h := setup(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/no/such/page", nil))
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "Page Not Found") {
		t.Fatalf("404: status %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("405: status %d", w.Code)
	}
}

func TestInitRequiresView(t *testing.T) {
	if err := (&Comp{}).Init(component.Deps{}); err == nil {
		t.Fatal("expected error")
	}
}
