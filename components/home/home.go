// components/home/home.go
//
// Home component: the landing page with the featured-courses widget, plus
// the site-wide 404 and 405 handlers.
package home

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/cadence/internal/analytics"
	"github.com/yanizio/cadence/internal/component"
	"github.com/yanizio/cadence/internal/logger"
	"github.com/yanizio/cadence/internal/view"
)

// compile-time assertions
var (
	_ component.Component   = (*Comp)(nil)
	_ component.Initializer = (*Comp)(nil)
)

// Comp implements component.Component.
type Comp struct {
	tracker *analytics.Tracker
	view    *view.View
}

func (c *Comp) Name() string { return "home" }

func (c *Comp) Init(d component.Deps) error {
	if d.View == nil {
		return errors.New("view is required")
	}
	c.tracker, c.view = d.Tracker, d.View
	return nil
}

func (c *Comp) Routes(r chi.Router) {
	r.Get("/", c.index)
	r.NotFound(c.view.NotFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		c.view.Error(w, r, http.StatusMethodNotAllowed, "Method Not Allowed",
			"That action is not available on this page.")
	})
}

func (c *Comp) index(w http.ResponseWriter, r *http.Request) {
	p := c.view.NewPage(r, "home", "", "")
	if err := c.view.Render(w, "home", p, http.StatusOK); err != nil {
		logger.FromContext(r.Context()).Errorw("render failed", "page", "home", "err", err)
		c.view.Internal().ServeHTTP(w, r)
		return
	}
	c.tracker.TrackPageView(analytics.PageViewFrom(p.Info, p.Head.TitleText()))
}

// Register component at package init.
func init() {
	component.Register(&Comp{})
}
