// internal/contact/controller.go
//
// Submission controller for one visitor's contact form.
//
// Context
// -------
// A Controller owns the form record, its field errors, the CAPTCHA token,
// and the submission State.  Every mutation happens under mu; the send call
// runs outside the lock so the page can still read state while a message is
// in flight.
//
// Submit
// ------
//  1. Submitting already?  Return ErrInFlight; the sender is not called.
//  2. Validate.  On failure store the field errors and return ErrValidation
//     without a state change.
//  3. Move to Submitting and snapshot the trimmed payload.
//  4. Verify the CAPTCHA token (informational, logged and counted only).
//  5. Send with a context detached from the request: a client disconnect
//     never aborts a send, and the transport owns the timeout.
//  6. Success → clear form, errors, and token, and schedule Reset after
//     resetDelay.  Failure → errors[message] = failure reason.
//  7. Track `form_submission{form_name, success}`, fire-and-forget.
//  8. On success, copy the inquiry to the archive when one is configured.
//
// Field errors are independent: a send failure sets the message error and
// leaves the other fields' errors as they were.
package contact

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/cadence/internal/form"
	"github.com/yanizio/cadence/internal/message"
	"github.com/yanizio/cadence/internal/metrics"
)

// Sentinel errors returned by Submit.
var (
	ErrInFlight     = errors.New("contact: submission already in flight")
	ErrValidation   = errors.New("contact: form has validation errors")
	ErrSendFailed   = errors.New("contact: message could not be sent")
	ErrUnknownField = errors.New("contact: unknown field")
)

// User-facing texts.
const (
	FallbackReason = "An unexpected error occurred. Please try again."
	SuccessText    = "Thank you! Your message has been sent successfully."
	ErrorText      = "Something went wrong. Please try again."
)

// DefaultFormName labels analytics events from the contact page.
const DefaultFormName = "contact_form_secure"

// DefaultResetDelay is how long the success banner stays up.
const DefaultResetDelay = 5 * time.Second

// Tracker receives submission outcomes.
type Tracker interface {
	TrackFormSubmission(formName string, success bool) error
}

// CaptchaVerifier checks a CAPTCHA token.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (string, error)
}

// Archiver stores successful inquiries.
type Archiver interface {
	Save(ctx context.Context, p message.ContactPayload) error
}

// Scheduler runs f after d and returns a function cancelling it.
type Scheduler func(d time.Duration, f func()) (cancel func())

// AfterFunc is the production Scheduler.
func AfterFunc(d time.Duration, f func()) func() {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}

// Options wires a Controller's collaborators.  Sender is required.
type Options struct {
	Sender     message.Sender
	Tracker    Tracker
	Verifier   CaptchaVerifier
	Archive    Archiver
	FormName   string
	ResetDelay time.Duration
	Schedule   Scheduler
	Now        func() time.Time
}

// Meta describes the request that triggered a Submit.
type Meta struct {
	UserAgent string
	RemoteIP  string
}

// Snapshot is a consistent copy of a Controller's state.
type Snapshot struct {
	State      State            `json:"state"`
	Form       form.ContactForm `json:"form"`
	Errors     form.FormErrors  `json:"errors"`
	HasCaptcha bool             `json:"has_captcha"`
	Ready      bool             `json:"ready"`
	Banner     string           `json:"banner,omitempty"`
}

// Controller is safe for concurrent use.
type Controller struct {
	opts Options

	mu          sync.Mutex
	state       State
	form        form.ContactForm
	errs        form.FormErrors
	captcha     string
	gen         uint64
	cancelReset func()
	lastSeen    time.Time
}

// NewController returns an Idle controller.
func NewController(opts Options) *Controller {
	if opts.FormName == "" {
		opts.FormName = DefaultFormName
	}
	if opts.ResetDelay <= 0 {
		opts.ResetDelay = DefaultResetDelay
	}
	if opts.Schedule == nil {
		opts.Schedule = AfterFunc
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{opts: opts, errs: form.FormErrors{}, lastSeen: opts.Now()}
}

//
// Reads
//

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// State returns the current state only.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		State:      c.state,
		Form:       c.form,
		Errors:     c.errs.Clone(),
		HasCaptcha: c.captcha != "",
		Ready:      c.state != Submitting && form.Ready(c.form, c.errs),
	}
	switch c.state {
	case Success:
		s.Banner = SuccessText
	case Error:
		s.Banner = ErrorText
		if msg := c.errs[form.FieldMessage]; msg != "" {
			s.Banner = msg
		}
	}
	return s
}

//
// Edits
//

// SetField stores v in f and clears f's error.  Editing while the success
// banner is up dismisses it.
func (c *Controller) SetField(f form.Field, v string) error {
	if !f.Valid() {
		return ErrUnknownField
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()

	if c.state == Success {
		c.moveLocked(EventDismiss)
	}
	c.form.Set(f, v)
	delete(c.errs, f)
	return nil
}

// SetForm applies every field of in via SetField semantics.
func (c *Controller) SetForm(in form.ContactForm) {
	for _, f := range form.Fields {
		_ = c.SetField(f, in.Get(f))
	}
}

// SetCaptcha stores the widget token ("" clears it).
func (c *Controller) SetCaptcha(token string) {
	c.mu.Lock()
	c.captcha = token
	c.touchLocked()
	c.mu.Unlock()
}

// Dismiss hides the success or error banner.
func (c *Controller) Dismiss() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()
	if c.state == Success || c.state == Error {
		c.moveLocked(EventDismiss)
	}
	return c.snapshotLocked()
}

//
// Submit
//

// Submit validates and sends the form.  See the file comment for the flow.
// The returned Snapshot reflects the state after the attempt.
func (c *Controller) Submit(ctx context.Context, meta Meta) (Snapshot, error) {
	log := zap.S().With("form", c.opts.FormName)

	c.mu.Lock()
	c.touchLocked()
	if c.state == Submitting {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		metrics.ContactSubmissionsTotal.WithLabelValues("busy").Inc()
		return snap, ErrInFlight
	}

	errs, ok := form.ValidateForm(c.form)
	c.errs = errs
	if !ok {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		metrics.ContactSubmissionsTotal.WithLabelValues("invalid").Inc()
		return snap, ErrValidation
	}

	if err := c.moveLocked(EventSubmit); err != nil {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, err
	}

	clean := c.form.Trimmed()
	payload := message.ContactPayload{
		FromName:  clean.Name,
		FromEmail: clean.Email,
		Subject:   clean.Subject,
		Message:   clean.Message,
		Timestamp: c.opts.Now().UTC(),
		UserAgent: meta.UserAgent,
	}
	if payload.UserAgent == "" {
		payload.UserAgent = "Unknown"
	}
	token := c.captcha
	c.mu.Unlock()

	sendCtx := context.WithoutCancel(ctx)

	if c.opts.Verifier != nil {
		result, _ := c.opts.Verifier.Verify(sendCtx, token, meta.RemoteIP)
		log.Infow("captcha checked", "result", result)
	}

	res, err := c.send(sendCtx, payload)
	success := err == nil && res.Success()

	c.mu.Lock()
	if success {
		c.moveLocked(EventSendSucceeded)
		c.form = form.ContactForm{}
		c.errs = form.FormErrors{}
		c.captcha = ""
		c.scheduleResetLocked()
	} else {
		c.moveLocked(EventSendFailed)
		c.errs[form.FieldMessage] = failureReason(res, err)
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if c.opts.Tracker != nil {
		_ = c.opts.Tracker.TrackFormSubmission(c.opts.FormName, success)
	}

	if !success {
		metrics.ContactSubmissionsTotal.WithLabelValues("error").Inc()
		log.Warnw("contact send failed", "status", res.Status, "err", err)
		return snap, ErrSendFailed
	}

	metrics.ContactSubmissionsTotal.WithLabelValues("success").Inc()
	log.Infow("contact message sent", "subject", payload.Subject)
	if c.opts.Archive != nil {
		if err := c.opts.Archive.Save(sendCtx, payload); err != nil {
			log.Errorw("contact archive failed", "err", err)
		}
	}
	return snap, nil
}

// send calls the Sender, turning a panic into an error so the controller
// always leaves Submitting.
func (c *Controller) send(ctx context.Context, p message.ContactPayload) (res message.Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.S().Errorw("contact sender panic", "panic", rec, "stack", string(debug.Stack()))
			res, err = message.Result{}, fmt.Errorf("sender panic: %v", rec)
		}
	}()
	return c.opts.Sender.Send(ctx, p)
}

func failureReason(res message.Result, err error) string {
	var se *message.SendError
	switch {
	case err == nil:
		return message.ReasonSendFailed
	case errors.As(err, &se) && se.Reason != "":
		return se.Reason
	default:
		return FallbackReason
	}
}

//
// Internals (mu held)
//

func (c *Controller) moveLocked(e Event) error {
	next, err := Transition(c.state, e)
	if err != nil {
		return err
	}
	if next == Idle || next == Submitting {
		c.stopResetLocked()
	}
	c.state = next
	return nil
}

func (c *Controller) scheduleResetLocked() {
	c.stopResetLocked()
	gen := c.gen
	c.cancelReset = c.opts.Schedule(c.opts.ResetDelay, func() { c.fireReset(gen) })
}

// stopResetLocked cancels any pending reset and invalidates its generation.
func (c *Controller) stopResetLocked() {
	c.gen++
	if c.cancelReset != nil {
		c.cancelReset()
		c.cancelReset = nil
	}
}

func (c *Controller) fireReset(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || c.state != Success {
		return
	}
	c.cancelReset = nil
	c.moveLocked(EventReset)
}

func (c *Controller) touchLocked() { c.lastSeen = c.opts.Now() }

// idleSince reports when the controller was last used and whether it is
// safe to evict (not mid-send).
func (c *Controller) idleSince() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen, c.state != Submitting
}

// close stops a pending reset timer.
func (c *Controller) close() {
	c.mu.Lock()
	c.stopResetLocked()
	c.mu.Unlock()
}
