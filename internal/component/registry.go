// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name> and calls
// component.Register() in an init() function.  At boot, cmd/web calls
// Mount, which runs Init(deps) on every component that implements
// Initializer and then lets each component add its routes to the shared
// router.  chi allows only one Mount per path, so components register
// routes directly instead of returning sub-routers.

package component

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/cadence/internal/analytics"
	"github.com/yanizio/cadence/internal/catalog"
	"github.com/yanizio/cadence/internal/config"
	"github.com/yanizio/cadence/internal/contact"
	"github.com/yanizio/cadence/internal/view"
)

// Deps are the shared services handed to components during Init.
type Deps struct {
	Config   *config.Config
	Catalog  *catalog.Catalog
	Tracker  *analytics.Tracker
	Contacts *contact.Registry
	View     *view.View
}

// Initializer is optional.  If a Component implements it, Init runs once
// before Routes is called.
type Initializer interface {
	Init(Deps) error
}

// Component contract.
//
// Routes should add BOTH page and API endpoints, e.g:
//
//	r.Get("/courses", c.list)
//	r.Route("/api/courses", func(api chi.Router) { ... })
type Component interface {
	Name() string
	Routes(r chi.Router)
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register is invoked from component init() functions.
func Register(c Component) {
	mu.Lock()
	registry[c.Name()] = c
	mu.Unlock()
}

// All returns every registered component sorted by name.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Mount initializes every component with deps and mounts its routes on r.
func Mount(r chi.Router, deps Deps) error {
	for _, c := range All() {
		if in, ok := c.(Initializer); ok {
			if err := in.Init(deps); err != nil {
				return fmt.Errorf("component %s: init: %w", c.Name(), err)
			}
		}
		c.Routes(r)
	}
	return nil
}
