// components/contact/contact.go
//
// Contact component: the contact page and its JSON API.
//
// Routes
// ------
//   GET  /contact                 – form, banner, and field errors
//   POST /contact                 – submit, then 303 back to GET /contact
//   POST /contact/dismiss         – hide the banner, 303 back
//   GET  /api/contact             – controller snapshot + fresh CSRF token
//   POST /api/contact             – JSON submit
//   POST /api/contact/dismiss     – JSON dismiss
//
// Each visitor has one controller (internal/contact.Registry), so the page
// redirects after POST and the following GET shows the outcome.  Every POST
// needs a valid CSRF token: the hidden csrf_token field on pages, the
// X-CSRF-Token header on the API.  A missing or stale token is a 403.
//
// API status mapping
// ------------------
//   200 success · 409 in flight · 422 validation · 502 send failed
package contact

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/cadence/internal/analytics"
	"github.com/yanizio/cadence/internal/component"
	ctl "github.com/yanizio/cadence/internal/contact"
	"github.com/yanizio/cadence/internal/form"
	"github.com/yanizio/cadence/internal/logger"
	"github.com/yanizio/cadence/internal/requestinfo"
	"github.com/yanizio/cadence/internal/session"
	"github.com/yanizio/cadence/internal/view"
)

// compile-time assertions
var (
	_ component.Component   = (*Comp)(nil)
	_ component.Initializer = (*Comp)(nil)
)

// CSRFHeader carries the token on API requests.
const CSRFHeader = "X-CSRF-Token"

// maxBody caps API request bodies.
const maxBody = 16 << 10

var errNoVisitor = errors.New("contact: no visitor id on request")

// Comp implements component.Component.
type Comp struct {
	registry *ctl.Registry
	tracker  *analytics.Tracker
	view     *view.View
	formName string
}

func (c *Comp) Name() string { return "contact" }

func (c *Comp) Init(d component.Deps) error {
	if d.Contacts == nil || d.View == nil {
		return errors.New("contact registry and view are required")
	}
	c.registry, c.tracker, c.view = d.Contacts, d.Tracker, d.View
	c.formName = ctl.DefaultFormName
	if d.Config != nil && d.Config.Contact.FormName != "" {
		c.formName = d.Config.Contact.FormName
	}
	return nil
}

func (c *Comp) Routes(r chi.Router) {
	r.Get("/contact", c.page)
	r.Post("/contact", c.submit)
	r.Post("/contact/dismiss", c.dismiss)

	r.Route("/api/contact", func(api chi.Router) {
		api.Get("/", c.apiState)
		api.Post("/", c.apiSubmit)
		api.Post("/dismiss", c.apiDismiss)
	})
}

//
// pages
//

// PageData feeds pages/contact.html.
type PageData struct {
	Snapshot ctl.Snapshot
	Fields   template.HTML
	CSRF     string
	FormName string
}

func (c *Comp) page(w http.ResponseWriter, r *http.Request) {
	box, err := c.controller(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	// /courses/{slug}/enroll links here with ?subject=…; only prefill an
	// untouched subject.
	if subj := r.URL.Query().Get("subject"); subj != "" && box.Snapshot().Form.Subject == "" {
		_ = box.SetField(form.FieldSubject, subj)
	}

	snap := box.Snapshot()
	tok, err := form.GenerateToken()
	if err != nil {
		c.fail(w, r, err)
		return
	}

	p := c.view.NewPage(r, "contact", "Contact Us", "Questions about lessons? Send us a message.")
	p.Data = PageData{
		Snapshot: snap,
		Fields:   form.RenderContactFields(snap.Form, snap.Errors),
		CSRF:     tok,
		FormName: c.formName,
	}
	if err := c.view.Render(w, "contact", p, http.StatusOK); err != nil {
		c.fail(w, r, err)
		return
	}
	c.tracker.TrackPageView(analytics.PageViewFrom(p.Info, p.Head.TitleText()))
}

func (c *Comp) submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		c.view.Error(w, r, http.StatusBadRequest, "Bad Request", "The form could not be read.")
		return
	}
	if !form.VerifyToken(r.PostForm.Get("csrf_token")) {
		c.forbidden(w, r)
		return
	}
	box, err := c.controller(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	box.SetForm(form.FromValues(r.PostForm))
	box.SetCaptcha(r.PostForm.Get("g-recaptcha-response"))
	c.run(r.Context(), box, r)

	http.Redirect(w, r, "/contact", http.StatusSeeOther)
}

func (c *Comp) dismiss(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || !form.VerifyToken(r.PostForm.Get("csrf_token")) {
		c.forbidden(w, r)
		return
	}
	box, err := c.controller(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	box.Dismiss()
	http.Redirect(w, r, "/contact", http.StatusSeeOther)
}

//
// API
//

// SubmitRequest is the POST /api/contact body.
type SubmitRequest struct {
	form.ContactForm
	Captcha string `json:"captcha"`
}

// StateResponse is returned by every API route.
type StateResponse struct {
	ctl.Snapshot
	CSRF  string `json:"csrf_token,omitempty"`
	Error string `json:"error,omitempty"`
}

func (c *Comp) apiState(w http.ResponseWriter, r *http.Request) {
	box, err := c.controller(r)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, StateResponse{Error: err.Error()})
		return
	}
	tok, err := form.GenerateToken()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, StateResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, StateResponse{Snapshot: box.Snapshot(), CSRF: tok})
}

func (c *Comp) apiSubmit(w http.ResponseWriter, r *http.Request) {
	if !form.VerifyToken(r.Header.Get(CSRFHeader)) {
		writeJSON(w, http.StatusForbidden, StateResponse{Error: "invalid or missing CSRF token"})
		return
	}
	var req SubmitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, StateResponse{Error: "malformed JSON body"})
		return
	}
	box, err := c.controller(r)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, StateResponse{Error: err.Error()})
		return
	}

	box.SetForm(req.ContactForm)
	box.SetCaptcha(req.Captcha)
	snap, err := c.run(r.Context(), box, r)
	writeJSON(w, statusFor(err), StateResponse{Snapshot: snap})
}

func (c *Comp) apiDismiss(w http.ResponseWriter, r *http.Request) {
	if !form.VerifyToken(r.Header.Get(CSRFHeader)) {
		writeJSON(w, http.StatusForbidden, StateResponse{Error: "invalid or missing CSRF token"})
		return
	}
	box, err := c.controller(r)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, StateResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, StateResponse{Snapshot: box.Dismiss()})
}

//
// helpers
//

func (c *Comp) controller(r *http.Request) (*ctl.Controller, error) {
	id, ok := session.VisitorID(r.Context())
	if !ok {
		return nil, errNoVisitor
	}
	return c.registry.Get(id), nil
}

// run submits box with request metadata.  Outcomes other than success are
// reflected in the snapshot; only unexpected errors are logged here.
func (c *Comp) run(ctx context.Context, box *ctl.Controller, r *http.Request) (ctl.Snapshot, error) {
	meta := ctl.Meta{UserAgent: r.UserAgent()}
	if ip := requestinfo.ClientIP(r); ip != nil {
		meta.RemoteIP = ip.String()
	}

	snap, err := box.Submit(ctx, meta)
	switch {
	case err == nil, errors.Is(err, ctl.ErrValidation), errors.Is(err, ctl.ErrInFlight), errors.Is(err, ctl.ErrSendFailed):
	default:
		logger.FromContext(ctx).Errorw("contact submit", "err", err)
	}
	return snap, err
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ctl.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ctl.ErrInFlight):
		return http.StatusConflict
	case errors.Is(err, ctl.ErrSendFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (c *Comp) forbidden(w http.ResponseWriter, r *http.Request) {
	c.view.Error(w, r, http.StatusForbidden, "Form Expired",
		"Your form session expired. Please reload the page and try again.")
}

func (c *Comp) fail(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContext(r.Context()).Errorw("contact page", "err", err)
	c.view.Internal().ServeHTTP(w, r)
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
