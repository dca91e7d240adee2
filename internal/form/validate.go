// internal/form/validate.go
//
// Cadence – Forms subsystem: server-side validation.
//
// Context
//   The contact page posts four strings.  ValidateField checks one of them
//   against its rule; ValidateForm runs every field and aggregates the
//   failures into FormErrors so templates can highlight exact issues.
//
// Workflow
//   •  Checks run in a fixed order and the first failure wins:
//      required → min length → max length → pattern.
//   •  Lengths are measured in runes on the trimmed value.  The pattern is
//      matched against the raw value.  Length and pattern checks are skipped
//      for a blank value so a blank optional field never reports a format
//      problem.
//   •  Both functions are pure and total: any string, empty or hostile,
//      yields either "" or a user-facing message.
//
//------------------------------------------------------------------------------

package form

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// -----------------------------------------------------------------------------
// Data types
// -----------------------------------------------------------------------------

// ContactForm is the record edited field by field on the contact page.
type ContactForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Get returns the value of f.  Unknown fields read as "".
func (c ContactForm) Get(f Field) string {
	switch f {
	case FieldName:
		return c.Name
	case FieldEmail:
		return c.Email
	case FieldSubject:
		return c.Subject
	case FieldMessage:
		return c.Message
	}
	return ""
}

// Set stores v in field f and reports whether f was known.
func (c *ContactForm) Set(f Field, v string) bool {
	switch f {
	case FieldName:
		c.Name = v
	case FieldEmail:
		c.Email = v
	case FieldSubject:
		c.Subject = v
	case FieldMessage:
		c.Message = v
	default:
		return false
	}
	return true
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (c ContactForm) Trimmed() ContactForm {
	return ContactForm{
		Name:    strings.TrimSpace(c.Name),
		Email:   strings.TrimSpace(c.Email),
		Subject: strings.TrimSpace(c.Subject),
		Message: strings.TrimSpace(c.Message),
	}
}

// FromValues reads the four fields out of posted form data.
func FromValues(v url.Values) ContactForm {
	var c ContactForm
	for _, f := range Fields {
		c.Set(f, v.Get(string(f)))
	}
	return c
}

// FormErrors maps a field to its current error message.  A field without an
// entry has no error.
type FormErrors map[Field]string

// Clone returns an independent copy.
func (e FormErrors) Clone() FormErrors {
	out := make(FormErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// -----------------------------------------------------------------------------
// Public API
// -----------------------------------------------------------------------------

// ValidateField returns the first rule violation for value, or "" when the
// value passes.  Unknown fields always pass.
func ValidateField(f Field, value string) string {
	rule, ok := rules[f]
	if !ok {
		return ""
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		if rule.Required {
			return f.Title() + " is required"
		}
		return ""
	}

	n := utf8.RuneCountInString(trimmed)
	if rule.MinLength > 0 && n < rule.MinLength {
		return fmt.Sprintf("%s must be at least %d characters", f.Title(), rule.MinLength)
	}
	if rule.MaxLength > 0 && n > rule.MaxLength {
		return fmt.Sprintf("%s must be less than %d characters", f.Title(), rule.MaxLength)
	}
	if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
		return patternMsg(f)
	}
	return ""
}

// ValidateForm validates every field of c.  ok is true when errs is empty.
func ValidateForm(c ContactForm) (errs FormErrors, ok bool) {
	errs = make(FormErrors)
	for _, f := range Fields {
		if msg := ValidateField(f, c.Get(f)); msg != "" {
			errs[f] = msg
		}
	}
	return errs, len(errs) == 0
}

// Ready reports whether the submit button should be enabled: no outstanding
// errors and every field non-blank.
func Ready(c ContactForm, errs FormErrors) bool {
	if len(errs) > 0 {
		return false
	}
	for _, f := range Fields {
		if strings.TrimSpace(c.Get(f)) == "" {
			return false
		}
	}
	return true
}

func patternMsg(f Field) string {
	if f == FieldEmail {
		return "Please enter a valid email address"
	}
	return f.Title() + " does not match the required format"
}
