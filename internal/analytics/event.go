// internal/analytics/event.go
//
// Analytics events and the helpers that build them.
//
// Context
// -------
// Every event is a name plus a flat key/value payload, stamped with an id and
// an RFC 3339 timestamp when it is tracked.  The helpers below validate
// their inputs the same way for server-side callers (contact controller,
// course pages) and for browser events posted to /api/analytics/events.
// Invalid input is logged and rejected with ErrInvalidEvent; it never
// reaches a sink.
package analytics

import (
	"errors"
	"time"
)

// Event names.
const (
	EventPageView          = "page_view"
	EventCourseInteraction = "course_interaction"
	EventCourseClick       = "course_click"
	EventFormSubmission    = "form_submission"
	EventButtonClick       = "button_click"
	EventScrollDepth       = "scroll_depth"
)

// Course interaction actions.
const (
	ActionView   = "view"
	ActionClick  = "click"
	ActionEnroll = "enroll"
)

// ErrInvalidEvent rejects helper input that fails validation.
var ErrInvalidEvent = errors.New("invalid analytics event")

// Event is one tracked occurrence.
type Event struct {
	ID        string         `json:"id"`
	Name      string         `json:"event"`
	Payload   map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

// PageView describes one rendered page.
type PageView struct {
	Page      string
	Title     string
	UserAgent string
	Referrer  string
	Browser   string
	OS        string
	Device    string
	Country   string
}

func (p PageView) payload() map[string]any {
	m := map[string]any{
		"page":      p.Page,
		"title":     p.Title,
		"userAgent": p.UserAgent,
		"referrer":  p.Referrer,
	}
	if p.Browser != "" {
		m["browser"] = p.Browser
	}
	if p.OS != "" {
		m["os"] = p.OS
	}
	if p.Device != "" {
		m["device"] = p.Device
	}
	if p.Country != "" {
		m["country"] = p.Country
	}
	return m
}

func validAction(a string) bool {
	switch a {
	case ActionView, ActionClick, ActionEnroll:
		return true
	}
	return false
}
