// components/analytics/analytics.go
//
// Browser analytics endpoint.
//
//   POST /api/analytics/events   {"event": "...", "data": {...}}
//
// Accepted events: course_click, button_click, scroll_depth, and
// course_interaction.  Each is validated by the matching Tracker helper;
// invalid input gets 400, unknown events 422, and accepted events 202.
// Delivery is asynchronous, so 202 never means the sink has stored it.
package analytics

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/cadence/internal/analytics"
	"github.com/yanizio/cadence/internal/component"
)

// compile-time assertions
var (
	_ component.Component   = (*Comp)(nil)
	_ component.Initializer = (*Comp)(nil)
)

const maxBody = 4 << 10

// Comp implements component.Component.
type Comp struct {
	tracker *analytics.Tracker
}

func (c *Comp) Name() string { return "analytics" }

func (c *Comp) Init(d component.Deps) error {
	c.tracker = d.Tracker
	return nil
}

func (c *Comp) Routes(r chi.Router) {
	r.Post("/api/analytics/events", c.collect)
}

// Incoming is one browser event.
type Incoming struct {
	Event string `json:"event"`
	Data  struct {
		CourseID    int    `json:"course_id"`
		CourseTitle string `json:"course_title"`
		Action      string `json:"action"`
		Location    string `json:"location"`
		Button      string `json:"button_name"`
		Depth       int    `json:"depth"`
	} `json:"data"`
}

var errUnknownEvent = errors.New("unknown event")

func (c *Comp) collect(w http.ResponseWriter, r *http.Request) {
	var in Incoming
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed JSON body"})
		return
	}

	err := c.dispatch(in)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
	case errors.Is(err, errUnknownEvent):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
}

func (c *Comp) dispatch(in Incoming) error {
	d := in.Data
	switch in.Event {
	case analytics.EventCourseClick:
		return c.tracker.TrackCourseClick(d.CourseID, d.CourseTitle, d.Location)
	case analytics.EventButtonClick:
		return c.tracker.TrackButtonClick(d.Button, d.Location)
	case analytics.EventScrollDepth:
		return c.tracker.TrackScrollDepth(d.Depth)
	case analytics.EventCourseInteraction:
		return c.tracker.TrackCourseInteraction(d.CourseID, d.Action, map[string]any{
			"course_title": d.CourseTitle,
			"location":     d.Location,
		})
	default:
		return errUnknownEvent
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
