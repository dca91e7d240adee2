package contact

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yanizio/cadence/internal/form"
	"github.com/yanizio/cadence/internal/message"
)

/* ---------- fakes ---------- */

type fakeSender struct {
	calls atomic.Int32
	gate  chan struct{} // when non-nil, Send blocks until closed
	res   message.Result
	err   error

	mu   sync.Mutex
	last message.ContactPayload
}

type panicSender struct{}

func (panicSender) Send(context.Context, message.ContactPayload) (message.Result, error) {
	panic("relay exploded")
}

func (f *fakeSender) Send(_ context.Context, p message.ContactPayload) (message.Result, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.last = p
	f.mu.Unlock()
	if f.gate != nil {
		<-f.gate
	}
	return f.res, f.err
}

type fakeTracker struct {
	mu     sync.Mutex
	events []bool
}

func (f *fakeTracker) TrackFormSubmission(_ string, success bool) error {
	f.mu.Lock()
	f.events = append(f.events, success)
	f.mu.Unlock()
	return nil
}

type fakeArchive struct{ saved []message.ContactPayload }

func (f *fakeArchive) Save(_ context.Context, p message.ContactPayload) error {
	f.saved = append(f.saved, p)
	return nil
}

// manualScheduler records scheduled callbacks; tests fire them explicitly.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []*task
}

type task struct {
	d         time.Duration
	f         func()
	cancelled bool
}

func (m *manualScheduler) schedule(d time.Duration, f func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	tk := &task{d: d, f: f}
	m.tasks = append(m.tasks, tk)
	return func() {
		m.mu.Lock()
		tk.cancelled = true
		m.mu.Unlock()
	}
}

func (m *manualScheduler) last() *task {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tasks) == 0 {
		return nil
	}
	return m.tasks[len(m.tasks)-1]
}

func validForm() form.ContactForm {
	return form.ContactForm{
		Name:    "  Ada Lovelace ",
		Email:   "ada@example.com",
		Subject: "Piano lessons",
		Message: "I would like to enrol my daughter in beginner piano.",
	}
}

func newTestController(s *fakeSender) (*Controller, *fakeTracker, *manualScheduler) {
	tr := &fakeTracker{}
	ms := &manualScheduler{}
	c := NewController(Options{
		Sender:   s,
		Tracker:  tr,
		Schedule: ms.schedule,
	})
	return c, tr, ms
}

/* ---------- tests ---------- */

func TestSubmitSuccessClearsAndResets(t *testing.T) {
	s := &fakeSender{res: message.OK}
	arch := &fakeArchive{}
	c, tr, ms := newTestController(s)
	c.opts.Archive = arch

	c.SetForm(validForm())
	c.SetCaptcha("tok")

	snap, err := c.Submit(context.Background(), Meta{})
	require.NoError(t, err)
	assert.Equal(t, Success, snap.State)
	assert.Equal(t, SuccessText, snap.Banner)
	assert.Equal(t, form.ContactForm{}, snap.Form)
	assert.Empty(t, snap.Errors)
	assert.False(t, snap.HasCaptcha)

	assert.Equal(t, "Ada Lovelace", s.last.FromName, "payload is trimmed")
	assert.Equal(t, "Unknown", s.last.UserAgent)
	assert.Equal(t, []bool{true}, tr.events)
	require.Len(t, arch.saved, 1)

	tk := ms.last()
	require.NotNil(t, tk)
	assert.Equal(t, DefaultResetDelay, tk.d)
	tk.f()
	assert.Equal(t, Idle, c.State())
}

func TestSubmitInvalidNoTransition(t *testing.T) {
	s := &fakeSender{res: message.OK}
	c, tr, _ := newTestController(s)
	c.SetForm(form.ContactForm{Name: "A", Email: "nope"})

	snap, err := c.Submit(context.Background(), Meta{})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, Idle, snap.State)
	assert.Equal(t, "Name must be at least 2 characters", snap.Errors[form.FieldName])
	assert.Equal(t, "Please enter a valid email address", snap.Errors[form.FieldEmail])
	assert.Equal(t, "Subject is required", snap.Errors[form.FieldSubject])
	assert.Zero(t, s.calls.Load())
	assert.Empty(t, tr.events)
	assert.False(t, snap.Ready)
}

func TestSubmitFailureReasons(t *testing.T) {
	cases := []struct {
		name string
		res  message.Result
		err  error
		want string
	}{
		{"bad status", message.Result{Status: 500}, nil, message.ReasonSendFailed},
		{"send error", message.Result{}, &message.SendError{Reason: message.ReasonSendFailed, Err: errors.New("dial")}, message.ReasonSendFailed},
		{"other error", message.Result{}, errors.New("boom"), FallbackReason},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &fakeSender{res: tc.res, err: tc.err}
			c, tr, ms := newTestController(s)
			c.SetForm(validForm())

			snap, err := c.Submit(context.Background(), Meta{UserAgent: "UA"})
			require.ErrorIs(t, err, ErrSendFailed)
			assert.Equal(t, Error, snap.State)
			assert.Equal(t, tc.want, snap.Errors[form.FieldMessage])
			assert.Equal(t, tc.want, snap.Banner)
			assert.Equal(t, validForm(), snap.Form, "form kept for retry")
			assert.Equal(t, []bool{false}, tr.events)
			assert.Nil(t, ms.last(), "no reset scheduled on failure")
		})
	}
}

func TestRetryAfterError(t *testing.T) {
	s := &fakeSender{err: errors.New("down")}
	c, _, _ := newTestController(s)
	c.SetForm(validForm())

	_, err := c.Submit(context.Background(), Meta{})
	require.ErrorIs(t, err, ErrSendFailed)

	s.err, s.res = nil, message.OK
	snap, err := c.Submit(context.Background(), Meta{})
	require.NoError(t, err)
	assert.Equal(t, Success, snap.State)
	assert.EqualValues(t, 2, s.calls.Load())
}

func TestConcurrentSubmitSendsOnce(t *testing.T) {
	s := &fakeSender{res: message.OK, gate: make(chan struct{})}
	c, _, _ := newTestController(s)
	c.SetForm(validForm())

	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background(), Meta{})
		done <- err
	}()

	require.Eventually(t, func() bool { return c.State() == Submitting }, time.Second, time.Millisecond)

	snap, err := c.Submit(context.Background(), Meta{})
	assert.ErrorIs(t, err, ErrInFlight)
	assert.Equal(t, Submitting, snap.State)
	assert.False(t, snap.Ready)

	close(s.gate)
	require.NoError(t, <-done)
	assert.EqualValues(t, 1, s.calls.Load())
}

func TestSubmitSurvivesCancelledRequest(t *testing.T) {
	s := &fakeSender{res: message.OK}
	c, _, _ := newTestController(s)
	c.SetForm(validForm())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	snap, err := c.Submit(ctx, Meta{})
	require.NoError(t, err)
	assert.Equal(t, Success, snap.State)
}

func TestEditDuringSuccessDismisses(t *testing.T) {
	s := &fakeSender{res: message.OK}
	c, _, ms := newTestController(s)
	c.SetForm(validForm())
	_, err := c.Submit(context.Background(), Meta{})
	require.NoError(t, err)

	require.NoError(t, c.SetField(form.FieldName, "Grace"))
	assert.Equal(t, Idle, c.State())

	tk := ms.last()
	require.NotNil(t, tk)
	assert.True(t, tk.cancelled)

	// A stale reset firing late must not disturb the new state.
	tk.f()
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, "Grace", c.Snapshot().Form.Name)
}

func TestStaleResetIgnoredAfterNewSuccess(t *testing.T) {
	s := &fakeSender{res: message.OK}
	c, _, ms := newTestController(s)

	c.SetForm(validForm())
	_, err := c.Submit(context.Background(), Meta{})
	require.NoError(t, err)
	first := ms.last()

	c.Dismiss()
	c.SetForm(validForm())
	_, err = c.Submit(context.Background(), Meta{})
	require.NoError(t, err)

	first.f()
	assert.Equal(t, Success, c.State(), "old timer must not reset the new banner")
	ms.last().f()
	assert.Equal(t, Idle, c.State())
}

func TestSetFieldClearsOnlyThatError(t *testing.T) {
	c, _, _ := newTestController(&fakeSender{res: message.OK})
	_, err := c.Submit(context.Background(), Meta{})
	require.ErrorIs(t, err, ErrValidation)

	require.NoError(t, c.SetField(form.FieldEmail, "x@y.z"))
	snap := c.Snapshot()
	assert.NotContains(t, snap.Errors, form.FieldEmail)
	assert.Contains(t, snap.Errors, form.FieldName)

	assert.ErrorIs(t, c.SetField(form.Field("phone"), "1"), ErrUnknownField)
}

func TestDismissKeepsFieldErrors(t *testing.T) {
	c, _, _ := newTestController(&fakeSender{err: errors.New("x")})
	c.SetForm(validForm())
	_, err := c.Submit(context.Background(), Meta{})
	require.ErrorIs(t, err, ErrSendFailed)

	snap := c.Dismiss()
	assert.Equal(t, Idle, snap.State)
	assert.Equal(t, FallbackReason, snap.Errors[form.FieldMessage])
	assert.Empty(t, snap.Banner)
}

func TestSubmitSenderPanicEndsInError(t *testing.T) {
	c := NewController(Options{Sender: panicSender{}, Schedule: (&manualScheduler{}).schedule})
	c.SetForm(validForm())

	snap, err := c.Submit(context.Background(), Meta{})
	require.ErrorIs(t, err, ErrSendFailed)
	assert.Equal(t, Error, snap.State)
	assert.Equal(t, FallbackReason, snap.Errors[form.FieldMessage])

	_, evictable := c.idleSince()
	assert.True(t, evictable, "controller must not stay wedged in Submitting")
}

func TestSubmitAcceptsAnyFormValidEmail(t *testing.T) {
	c := NewController(Options{
		Sender:   message.NewLogSender(zap.NewNop().Sugar()),
		Schedule: (&manualScheduler{}).schedule,
	})
	f := validForm()
	f.Email = "user@example.123"
	c.SetForm(f)

	snap, err := c.Submit(context.Background(), Meta{})
	require.NoError(t, err)
	assert.Equal(t, Success, snap.State)
}
