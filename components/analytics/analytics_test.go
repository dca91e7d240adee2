package analytics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/cadence/internal/analytics"
	"github.com/yanizio/cadence/internal/component"
)

type recSink struct {
	mu     sync.Mutex
	events []analytics.Event
}

func (s *recSink) Deliver(_ context.Context, ev analytics.Event) error {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
	return nil
}

func TestCollect(t *testing.T) {
	sink := &recSink{}
	tr := analytics.NewTracker(sink, analytics.Options{Enabled: true})
	c := &Comp{}
	if err := c.Init(component.Deps{Tracker: tr}); err != nil {
		t.Fatal(err)
	}
	r := chi.NewRouter()
	c.Routes(r)

	cases := []struct {
		body string
		want int
	}{
		{`{"event":"course_click","data":{"course_id":2,"course_title":"Jazz Piano","location":"featured_courses"}}`, http.StatusAccepted},
		{`{"event":"button_click","data":{"button_name":"view_all_courses","location":"featured_courses"}}`, http.StatusAccepted},
		{`{"event":"scroll_depth","data":{"depth":50}}`, http.StatusAccepted},
		{`{"event":"course_interaction","data":{"course_id":2,"action":"click"}}`, http.StatusAccepted},
		{`{"event":"scroll_depth","data":{"depth":150}}`, http.StatusBadRequest},
		{`{"event":"course_click","data":{"course_id":0}}`, http.StatusBadRequest},
		{`{"event":"course_interaction","data":{"course_id":2,"action":"buy"}}`, http.StatusBadRequest},
		{`{"event":"mystery","data":{}}`, http.StatusUnprocessableEntity},
		{`not json`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/analytics/events", strings.NewReader(tc.body))
		r.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Errorf("%s: status %d, want %d", tc.body, w.Code, tc.want)
		}
	}

	tr.Wait()
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.events) != 4 {
		t.Fatalf("delivered %d events, want 4", len(sink.events))
	}
}
