// internal/form/renderer.go
//
// Cadence – Forms subsystem: HTML renderer.
//
// Context
//   Converts the contact-form rule table into safe, accessible HTML markup.
//   HTML5 validation attributes come straight from the rules, so the browser
//   and the server agree on limits.  Current values and field errors are
//   written back on every render, which is how the page re-displays input
//   after a failed POST.
//
// Workflow
//   •  RenderContactFields writes each field in Fields order via writeField.
//   •  Required, minlength, maxlength, and placeholder attributes are attached
//      where the rule sets them.
//   •  A CSRF token (csrf.go) is embedded as a hidden <input>.
//   •  The caller receives template.HTML so the surrounding template does not
//      double-escape the markup.
//
// Style
//   Output HTML is deliberately plain so themes can style via element
//   selectors or class hooks.  Each input gets id="fld-{name}" and is wrapped
//   in <div class="form-field">; a field with an error gets class="invalid".
//
//------------------------------------------------------------------------------

package form

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strconv"
	"time"
)

// RenderContactFields returns the markup for the four contact inputs plus the
// hidden CSRF token.  errs may be nil.
func RenderContactFields(values ContactForm, errs FormErrors) template.HTML {
	var buf bytes.Buffer
	buf.WriteString(`<div class="cadence-form">` + "\n")

	for _, f := range Fields {
		writeField(&buf, f, values.Get(f), errs[f])
	}

	fmt.Fprintf(&buf, `<input type="hidden" name="csrf_token" value="%s">`+"\n", csrfGenerateToken())
	buf.WriteString(`</div>`)
	return template.HTML(buf.String())
}

// writeField emits HTML for a single field into buf.
func writeField(buf *bytes.Buffer, f Field, val, errMsg string) {
	rule := rules[f]
	p := presentations[f]
	name := html.EscapeString(string(f))

	class := "form-field"
	if errMsg != "" {
		class += " invalid"
	}
	buf.WriteString(`<div class="` + class + `">` + "\n")
	buf.WriteString(`<label for="fld-` + name + `">` + html.EscapeString(p.Label) + `</label>` + "\n")

	if p.Type == "textarea" {
		buf.WriteString(`<textarea id="fld-` + name + `" name="` + name + `" rows="5"`)
	} else {
		buf.WriteString(`<input id="fld-` + name + `" name="` + name + `" type="` + p.Type + `"`)
	}
	if rule.Required {
		buf.WriteString(` required`)
	}
	if rule.MinLength > 0 {
		buf.WriteString(` minlength="` + strconv.Itoa(rule.MinLength) + `"`)
	}
	if rule.MaxLength > 0 {
		buf.WriteString(` maxlength="` + strconv.Itoa(rule.MaxLength) + `"`)
	}
	if p.Placeholder != "" {
		buf.WriteString(` placeholder="` + html.EscapeString(p.Placeholder) + `"`)
	}
	if errMsg != "" {
		buf.WriteString(` aria-invalid="true" aria-describedby="err-` + name + `"`)
	}

	if p.Type == "textarea" {
		buf.WriteString(`>` + html.EscapeString(val) + `</textarea>` + "\n")
	} else {
		if val != "" {
			buf.WriteString(` value="` + html.EscapeString(val) + `"`)
		}
		buf.WriteString(`>` + "\n")
	}

	buf.WriteString(`<span class="error" id="err-` + name + `" aria-live="polite">` + html.EscapeString(errMsg) + `</span>` + "\n")
	buf.WriteString(`</div>` + "\n")
}

// csrfGenerateToken never fails the render; a broken token simply fails
// verification on POST.
func csrfGenerateToken() string {
	token, err := GenerateToken()
	if err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return token
}
