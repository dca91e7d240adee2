// internal/analytics/tracker.go
//
// Best-effort, asynchronous event delivery.
//
// Context
// -------
// Track never blocks the caller and never returns a delivery error.  Each
// event is handed to a goroutine that calls Sink.Deliver once and, on
// failure, retries up to MaxRetries times with a linearly growing delay
// (RetryDelay, 2×RetryDelay, 3×RetryDelay…).  An event therefore gets at
// most 1 + MaxRetries delivery attempts: 4 with the default of 3.  The final
// failure is logged and counted; nothing propagates back to the page or the
// contact form.
//
// Disabled trackers drop events; debug trackers also log each event.
//
// The Tracker is injected into components (see internal/component.Deps).
// There is no package-level tracker.
//
// Instrumentation
// ---------------
//   - analytics_events_total{result="sent|dropped|failed"}
//   - analytics_retries_total
package analytics

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yanizio/cadence/internal/metrics"
)

// Sink stores or forwards one event.
type Sink interface {
	Deliver(ctx context.Context, ev Event) error
}

// Options configures a Tracker.
type Options struct {
	Enabled bool
	Debug   bool
	// MaxRetries counts retries after the first attempt, so the attempt
	// ceiling is MaxRetries+1.  Negative values mean no retries.
	MaxRetries int
	RetryDelay time.Duration
}

// Tracker dispatches events to a Sink.
type Tracker struct {
	sink Sink
	opts Options
	log  *zap.SugaredLogger
	now  func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex // guards closed and wg.Add
	closed bool
}

// NewTracker returns a Tracker delivering to sink.
func NewTracker(sink Sink, opts Options) *Tracker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Tracker{
		sink:   sink,
		opts:   opts,
		log:    zap.S().Named("analytics"),
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Track queues name with a copy of payload.  It returns immediately.
func (t *Tracker) Track(name string, payload map[string]any) {
	if t == nil {
		return
	}
	if !t.opts.Enabled {
		metrics.AnalyticsEventsTotal.WithLabelValues("dropped").Inc()
		return
	}

	ev := Event{
		ID:        uuid.NewString(),
		Name:      name,
		Payload:   maps.Clone(payload),
		Timestamp: t.now().UTC(),
	}
	if ev.Payload == nil {
		ev.Payload = map[string]any{}
	}
	ev.Payload["timestamp"] = ev.Timestamp.Format(time.RFC3339Nano)

	if t.opts.Debug {
		t.log.Debugw("analytics event", "event", ev.Name, "data", ev.Payload)
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		metrics.AnalyticsEventsTotal.WithLabelValues("dropped").Inc()
		return
	}
	t.wg.Add(1)
	t.mu.Unlock()

	go func() {
		defer t.wg.Done()
		t.deliver(ev)
	}()
}

func (t *Tracker) deliver(ev Event) {
	var b backoff.BackOff = &linearBackOff{step: t.opts.RetryDelay}
	b = backoff.WithMaxRetries(b, uint64(max(t.opts.MaxRetries, 0)))
	b = backoff.WithContext(b, t.ctx)

	op := func() error { return t.sink.Deliver(t.ctx, ev) }
	notify := func(err error, wait time.Duration) {
		metrics.AnalyticsRetriesTotal.Inc()
		t.log.Warnw("analytics delivery retry", "event", ev.Name, "id", ev.ID, "wait", wait, "err", err)
	}

	if err := backoff.RetryNotify(op, b, notify); err != nil {
		metrics.AnalyticsEventsTotal.WithLabelValues("failed").Inc()
		t.log.Errorw("analytics delivery failed", "event", ev.Name, "id", ev.ID, "err", err)
		return
	}
	metrics.AnalyticsEventsTotal.WithLabelValues("sent").Inc()
}

// Wait blocks until every queued event has been delivered or given up.
func (t *Tracker) Wait() { t.wg.Wait() }

// Close cancels pending retries and waits for in-flight deliveries, up to
// ctx's deadline.  Events tracked after Close has started are dropped.
func (t *Tracker) Close(ctx context.Context) error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.cancel()
		return nil
	case <-ctx.Done():
		t.cancel()
		<-done
		return fmt.Errorf("analytics close: %w", ctx.Err())
	}
}

//
// Helpers
//

// TrackFormSubmission records a contact-form outcome.
func (t *Tracker) TrackFormSubmission(formName string, success bool) error {
	if formName == "" {
		t.reject(EventFormSubmission, "form_name", formName)
		return fmt.Errorf("%w: empty form name", ErrInvalidEvent)
	}
	t.Track(EventFormSubmission, map[string]any{"form_name": formName, "success": success})
	return nil
}

// TrackCourseInteraction records a view, click, or enroll on a course.
// extra (title, location) is merged into the payload.
func (t *Tracker) TrackCourseInteraction(courseID int, action string, extra map[string]any) error {
	if courseID <= 0 || !validAction(action) {
		t.reject(EventCourseInteraction, "course_id", courseID, "action", action)
		return fmt.Errorf("%w: course %d action %q", ErrInvalidEvent, courseID, action)
	}
	p := maps.Clone(extra)
	if p == nil {
		p = map[string]any{}
	}
	p["course_id"] = courseID
	p["action"] = action
	t.Track(EventCourseInteraction, p)
	return nil
}

// TrackCourseClick records a click on a featured course card.
func (t *Tracker) TrackCourseClick(courseID int, title, location string) error {
	if courseID <= 0 {
		t.reject(EventCourseClick, "course_id", courseID)
		return fmt.Errorf("%w: course %d", ErrInvalidEvent, courseID)
	}
	t.Track(EventCourseClick, map[string]any{
		"course_id":    courseID,
		"course_title": title,
		"location":     location,
	})
	return nil
}

// TrackButtonClick records a named button press.
func (t *Tracker) TrackButtonClick(button, location string) error {
	if button == "" {
		t.reject(EventButtonClick, "button_name", button)
		return fmt.Errorf("%w: empty button name", ErrInvalidEvent)
	}
	t.Track(EventButtonClick, map[string]any{"button_name": button, "location": location})
	return nil
}

// TrackScrollDepth records how far down a page the visitor scrolled (0–100).
func (t *Tracker) TrackScrollDepth(depth int) error {
	if depth < 0 || depth > 100 {
		t.reject(EventScrollDepth, "depth", depth)
		return fmt.Errorf("%w: depth %d", ErrInvalidEvent, depth)
	}
	t.Track(EventScrollDepth, map[string]any{"depth": depth})
	return nil
}

// TrackPageView records a rendered page.
func (t *Tracker) TrackPageView(p PageView) {
	t.Track(EventPageView, p.payload())
}

func (t *Tracker) reject(event string, kv ...any) {
	if t == nil {
		return
	}
	t.log.Warnw("invalid analytics data", append([]any{"event", event}, kv...)...)
}

//
// Linear back-off
//

// linearBackOff waits step, 2×step, 3×step…  Retry limits come from
// backoff.WithMaxRetries.
type linearBackOff struct {
	step time.Duration
	n    int
}

func (l *linearBackOff) NextBackOff() time.Duration {
	l.n++
	return time.Duration(l.n) * l.step
}

func (l *linearBackOff) Reset() { l.n = 0 }
