package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakySink fails the first `fail` deliveries.
type flakySink struct {
	mu     sync.Mutex
	fail   int
	calls  int
	events []Event
	at     []time.Time
}

func (f *flakySink) Deliver(_ context.Context, ev Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.at = append(f.at, time.Now())
	if f.calls <= f.fail {
		return errors.New("collector unavailable")
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *flakySink) snapshot() (int, []Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, append([]Event(nil), f.events...)
}

func opts() Options {
	return Options{Enabled: true, MaxRetries: 3, RetryDelay: 5 * time.Millisecond}
}

func TestTrackDelivers(t *testing.T) {
	sink := &flakySink{}
	tr := NewTracker(sink, opts())

	payload := map[string]any{"k": "v"}
	tr.Track("custom", payload)
	tr.Wait()

	calls, evs := sink.snapshot()
	require.Equal(t, 1, calls)
	require.Len(t, evs, 1)
	assert.Equal(t, "custom", evs[0].Name)
	assert.NotEmpty(t, evs[0].ID)
	assert.Equal(t, "v", evs[0].Payload["k"])
	assert.NotEmpty(t, evs[0].Payload["timestamp"])
	_, leaked := payload["timestamp"]
	assert.False(t, leaked, "caller payload must not be mutated")
}

func TestTrackRetriesLinearly(t *testing.T) {
	sink := &flakySink{fail: 3}
	tr := NewTracker(sink, opts())
	tr.Track("custom", nil)
	tr.Wait()

	calls, evs := sink.snapshot()
	assert.Equal(t, 4, calls, "one attempt plus three retries")
	assert.Len(t, evs, 1)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	// Gaps grow: ≥5ms, ≥10ms, ≥15ms.
	for i := 1; i < len(sink.at); i++ {
		gap := sink.at[i].Sub(sink.at[i-1])
		assert.GreaterOrEqual(t, gap, time.Duration(i)*5*time.Millisecond)
	}
}

func TestTrackGivesUp(t *testing.T) {
	sink := &flakySink{fail: 100}
	tr := NewTracker(sink, opts())
	tr.Track("custom", nil)
	tr.Wait()

	calls, evs := sink.snapshot()
	assert.Equal(t, 4, calls)
	assert.Empty(t, evs)
}

func TestTrackNegativeRetriesMeansOneAttempt(t *testing.T) {
	sink := &flakySink{fail: 100}
	o := opts()
	o.MaxRetries = -1
	tr := NewTracker(sink, o)
	tr.Track("custom", nil)
	tr.Wait()

	calls, _ := sink.snapshot()
	assert.Equal(t, 1, calls)
}

func TestTrackDisabledDrops(t *testing.T) {
	sink := &flakySink{}
	o := opts()
	o.Enabled = false
	tr := NewTracker(sink, o)
	tr.Track("custom", nil)
	tr.Wait()

	calls, _ := sink.snapshot()
	assert.Zero(t, calls)
}

func TestNilTrackerIsSafe(t *testing.T) {
	var tr *Tracker
	tr.Track("x", nil)
	assert.NoError(t, tr.TrackFormSubmission("f", true))
}

func TestHelpersValidate(t *testing.T) {
	sink := &flakySink{}
	tr := NewTracker(sink, opts())

	assert.ErrorIs(t, tr.TrackFormSubmission("", true), ErrInvalidEvent)
	assert.ErrorIs(t, tr.TrackCourseInteraction(0, ActionView, nil), ErrInvalidEvent)
	assert.ErrorIs(t, tr.TrackCourseInteraction(3, "purchase", nil), ErrInvalidEvent)
	assert.ErrorIs(t, tr.TrackCourseClick(-1, "x", "y"), ErrInvalidEvent)
	assert.ErrorIs(t, tr.TrackButtonClick("", "y"), ErrInvalidEvent)
	assert.ErrorIs(t, tr.TrackScrollDepth(101), ErrInvalidEvent)
	tr.Wait()
	calls, _ := sink.snapshot()
	assert.Zero(t, calls, "invalid events never reach the sink")

	require.NoError(t, tr.TrackFormSubmission("contact_form_secure", false))
	require.NoError(t, tr.TrackCourseInteraction(3, ActionEnroll, map[string]any{"location": "courses_page"}))
	tr.TrackPageView(PageView{Page: "/", Title: "Home"})
	tr.Wait()

	_, evs := sink.snapshot()
	require.Len(t, evs, 3)
	byName := map[string]Event{}
	for _, ev := range evs {
		byName[ev.Name] = ev
	}
	assert.Equal(t, false, byName[EventFormSubmission].Payload["success"])
	assert.Equal(t, "contact_form_secure", byName[EventFormSubmission].Payload["form_name"])
	assert.Equal(t, 3, byName[EventCourseInteraction].Payload["course_id"])
	assert.Equal(t, "courses_page", byName[EventCourseInteraction].Payload["location"])
	assert.Equal(t, "/", byName[EventPageView].Payload["page"])
}

func TestCloseCancelsRetries(t *testing.T) {
	sink := &flakySink{fail: 100}
	o := opts()
	o.RetryDelay = time.Hour
	tr := NewTracker(sink, o)
	tr.Track("custom", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := tr.Close(ctx)
	assert.Error(t, err)
}

func TestTrackAfterCloseDrops(t *testing.T) {
	sink := &flakySink{}
	tr := NewTracker(sink, opts())
	require.NoError(t, tr.Close(context.Background()))

	tr.Track("late", nil)
	tr.Wait()
	calls, _ := sink.snapshot()
	assert.Zero(t, calls)
}

func TestTrackConcurrentWithClose(t *testing.T) {
	sink := &flakySink{}
	tr := NewTracker(sink, opts())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Track("custom", nil)
		}()
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, tr.Close(ctx))
	wg.Wait()
	tr.Wait()
}

func TestLinearBackOff(t *testing.T) {
	b := &linearBackOff{step: time.Second}
	assert.Equal(t, time.Second, b.NextBackOff())
	assert.Equal(t, 2*time.Second, b.NextBackOff())
	assert.Equal(t, 3*time.Second, b.NextBackOff())
	b.Reset()
	assert.Equal(t, time.Second, b.NextBackOff())
}

func TestRedisSinkUnreachable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	s := NewRedisSink(rdb, time.Minute)
	err := s.Deliver(context.Background(), Event{ID: "x", Name: "custom", Timestamp: time.Now()})
	assert.Error(t, err)
}

func TestLogSink(t *testing.T) {
	assert.NoError(t, NewLogSink(nil).Deliver(context.Background(), Event{Name: "x"}))
}
