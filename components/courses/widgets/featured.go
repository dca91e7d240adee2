// components/courses/widgets/featured.go
//
// Featured-courses widget for the home page.  Shows the first N valid
// courses flagged isFeatured, or "Unable to load featured courses" when the
// dataset failed to load.
package widgets

import (
	"html/template"
	"net/http"

	"github.com/yanizio/cadence/internal/catalog"
	"github.com/yanizio/cadence/internal/logger"
	"github.com/yanizio/cadence/internal/widget"
)

// compile-time assertion
var _ widget.Widget = (*Featured)(nil)

// Renderer executes a widget template.
type Renderer interface {
	RenderWidget(name string, data any) (template.HTML, error)
}

// Featured implements widget.Widget.
type Featured struct {
	Catalog *catalog.Catalog
	View    Renderer
}

// Data feeds widgets/featured.html.
type Data struct {
	Courses []catalog.Course
	Err     string
}

func (f *Featured) ID() string { return "courses/featured" }

// Render builds the course list and renders it.  A dataset error becomes
// the widget's fallback text, not a render error.
func (f *Featured) Render(r *http.Request, _ map[string]any) (template.HTML, error) {
	var d Data
	courses, err := f.Catalog.Featured()
	if err != nil {
		logger.FromContext(r.Context()).Warnw("featured courses unavailable", "err", err)
		d.Err = err.Error()
	} else {
		d.Courses = courses
	}
	return f.View.RenderWidget("featured", d)
}
