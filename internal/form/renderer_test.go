package form

import (
	"strings"
	"testing"
)

func TestRenderContactFields(t *testing.T) {
	out := string(RenderContactFields(
		ContactForm{Name: `<b>Al</b>`, Message: "hello there"},
		FormErrors{FieldEmail: "Email is required"},
	))

	for _, want := range []string{
		`id="fld-name"`,
		`minlength="2" maxlength="50"`,
		`value="&lt;b&gt;Al&lt;/b&gt;"`,
		`<textarea id="fld-message" name="message" rows="5"`,
		`>hello there</textarea>`,
		`class="form-field invalid"`,
		`>Email is required</span>`,
		`name="csrf_token"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<b>Al</b>") {
		t.Fatal("value not escaped")
	}
}
