// internal/form/rules.go
//
// Cadence – Forms subsystem: the contact-form rule table.
//
// Context
//   The contact form has four fields with fixed constraints.  The table below
//   is static configuration; nothing derives or mutates it at runtime.  Both
//   the validator (validate.go) and the renderer (renderer.go) read it, so the
//   HTML5 attributes and the server-side checks never drift apart.
//
//------------------------------------------------------------------------------

package form

import (
	"regexp"
	"strings"
)

// Field names one contact-form input.  FormErrors keys are always Fields.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldSubject Field = "subject"
	FieldMessage Field = "message"
)

// Fields lists every field in validation and display order.
var Fields = [...]Field{FieldName, FieldEmail, FieldSubject, FieldMessage}

// Valid reports whether f is one of the four contact fields.
func (f Field) Valid() bool {
	_, ok := rules[f]
	return ok
}

// Title returns the field name with its first letter upper-cased, the form
// used in error messages ("Name is required").
func (f Field) Title() string {
	if f == "" {
		return ""
	}
	s := string(f)
	return strings.ToUpper(s[:1]) + s[1:]
}

// EmailPattern is the address shape accepted by the email field.
var EmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Rule is the constraint set for one field.  Zero MinLength or MaxLength
// means no bound.
type Rule struct {
	Required  bool
	MinLength int
	MaxLength int
	Pattern   *regexp.Regexp
}

var rules = map[Field]Rule{
	FieldName:    {Required: true, MinLength: 2, MaxLength: 50},
	FieldEmail:   {Required: true, Pattern: EmailPattern},
	FieldSubject: {Required: true, MinLength: 5, MaxLength: 100},
	FieldMessage: {Required: true, MinLength: 10, MaxLength: 1000},
}

// RuleFor returns the rule for f and whether f exists.
func RuleFor(f Field) (Rule, bool) {
	r, ok := rules[f]
	return r, ok
}

// presentation carries the markup-only attributes of each field.
type presentation struct {
	Label       string
	Placeholder string
	Type        string // input type, or "textarea"
}

var presentations = map[Field]presentation{
	FieldName:    {"Your Name *", "Enter your full name", "text"},
	FieldEmail:   {"Email Address *", "Enter your email address", "email"},
	FieldSubject: {"Subject *", "What is this about?", "text"},
	FieldMessage: {"Message *", "Tell us more about your inquiry...", "textarea"},
}
