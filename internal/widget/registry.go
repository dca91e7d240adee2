// internal/widget/registry.go
//
// Widget registry and lookup helpers.
//
// A **Widget** is a reusable view fragment rendered inside a page.  Each
// concrete widget lives under its component folder
// (`components/<comp>/widgets/<name>.go`) and is registered by the
// component at startup, once its dependencies exist.
//
// The key used for registration is `<component>/<widget>`, e.g.
// "courses/featured", and must be returned by the widget's ID method.
//
// Template authors embed a widget with:
//
//	{{ widget .Request "courses/featured" "limit" 3 }}
//
// Params are optional key/value pairs.  The helper looks up the widget,
// invokes Render, and returns template.HTML.
package widget

import (
	"html/template"
	"net/http"
	"sort"
	"sync"
)

// Widget represents a view fragment that can be embedded inside any page
// template.
//
// Errors should be returned, not written, so the calling helper can decide
// how to surface the failure.  Render MUST be concurrency-safe.
type Widget interface {
	ID() string
	Render(r *http.Request, params map[string]any) (template.HTML, error)
}

var (
	mu       sync.RWMutex
	registry = map[string]Widget{}
)

// Register adds w.  A later registration with the same key replaces the
// earlier one.
func Register(w Widget) {
	mu.Lock()
	registry[w.ID()] = w
	mu.Unlock()
}

// Lookup returns the widget or nil.
func Lookup(key string) Widget {
	mu.RLock()
	defer mu.RUnlock()
	return registry[key]
}

// Keys returns every registered key, sorted.
func Keys() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
