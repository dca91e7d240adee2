// internal/message/message.go
//
// Cadence – Outbound contact messages.
//
// Context
//   The contact controller hands a validated ContactPayload to a Sender and
//   reads back a Result.  Status 200 means the message left the building;
//   any other status, or an error, puts the form into its error state.
//
//   Two senders ship with the site:
//     • SMTPSender (smtp.go) – relays an HTML email to the school inbox.
//     • LogSender  (log.go)  – logs the payload; used when mail.smtp_host
//       is empty, e.g. in development.
//
//   The payload is validated again here with go-playground/validator so a
//   Sender never relays a message the form rules would have rejected.  The
//   address check is form.EmailPattern, registered as "contactemail"; the
//   stock "email" tag rejects addresses the form accepts.
//
//------------------------------------------------------------------------------

package message

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/yanizio/cadence/internal/form"
)

// ContactPayload is one contact-form message.
type ContactPayload struct {
	FromName  string    `json:"from_name"  validate:"required,max=50"`
	FromEmail string    `json:"from_email" validate:"required,contactemail"`
	Subject   string    `json:"subject"    validate:"required,max=100"`
	Message   string    `json:"message"    validate:"required,max=1000"`
	Timestamp time.Time `json:"timestamp"  validate:"required"`
	UserAgent string    `json:"user_agent"`
}

// Result is a Sender's verdict.
type Result struct {
	Status int
	Text   string
}

// OK is the Result of a successful send.
var OK = Result{Status: http.StatusOK, Text: "OK"}

// Success reports whether the send succeeded.
func (r Result) Success() bool { return r.Status == http.StatusOK }

// ReasonSendFailed is the user-facing text for a relay that did not accept
// the message.
const ReasonSendFailed = "Failed to send message"

// SendError carries a user-facing Reason alongside the transport error.
// Only Reason is ever shown to visitors.
type SendError struct {
	Reason string
	Err    error
}

func (e *SendError) Error() string { return e.Reason + ": " + e.Err.Error() }
func (e *SendError) Unwrap() error { return e.Err }

// Sender delivers contact messages.
type Sender interface {
	Send(ctx context.Context, p ContactPayload) (Result, error)
}

var v = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("contactemail", func(fl validator.FieldLevel) bool {
		return form.EmailPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks p against its struct tags.
func (p ContactPayload) Validate() error { return v.Struct(p) }

// headerSafe strips CR and LF so user text cannot inject mail headers.
func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
