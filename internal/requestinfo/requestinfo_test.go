package requestinfo

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

const chromeMac = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

func TestParseUA(t *testing.T) {
	ua := ParseUA(chromeMac, "en-GB,en;q=0.9")
	if ua.Browser != "Chrome" {
		t.Errorf("Browser = %q", ua.Browser)
	}
	if ua.Version != "124" {
		t.Errorf("Version = %q", ua.Version)
	}
	if ua.OS != "macOS" {
		t.Errorf("OS = %q", ua.OS)
	}
	if ua.Device != "Desktop" {
		t.Errorf("Device = %q", ua.Device)
	}
	if ua.IsBot {
		t.Error("IsBot = true")
	}
	if ua.PrimaryLang != "en-gb" {
		t.Errorf("PrimaryLang = %q", ua.PrimaryLang)
	}
}

func TestParseUABot(t *testing.T) {
	ua := ParseUA("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", "")
	if !ua.IsBot {
		t.Error("Googlebot not flagged as bot")
	}
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"xff", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.1:5000", "203.0.113.7"},
		{"xrip", map[string]string{"X-Real-Ip": "198.51.100.2"}, "10.0.0.1:5000", "198.51.100.2"},
		{"remote", nil, "192.0.2.10:1234", "192.0.2.10"},
	}
	for _, c := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = c.remote
		for k, v := range c.header {
			r.Header.Set(k, v)
		}
		if got := ClientIP(r).String(); got != c.want {
			t.Errorf("%s: got %s, want %s", c.name, got, c.want)
		}
	}
}

func TestEnrich(t *testing.T) {
	var got *RequestInfo
	h := Enrich(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/courses?q=piano", nil)
	r.Header.Set("User-Agent", chromeMac)
	r.Header.Set("Referer", "https://example.org/")
	h.ServeHTTP(httptest.NewRecorder(), r)

	if got == nil {
		t.Fatal("RequestInfo not attached")
	}
	if got.URL.Path != "/courses" || got.Referrer != "https://example.org/" {
		t.Errorf("unexpected info %+v", got)
	}
	if got.UA.Browser != "Chrome" {
		t.Errorf("Browser = %q", got.UA.Browser)
	}
	if FromContext(r.Context()) != nil {
		t.Error("original request context mutated")
	}
}

func TestInitGeo(t *testing.T) {
	if err := InitGeo(""); err != nil {
		t.Fatalf("empty path: %v", err)
	}
	if err := InitGeo("/nonexistent/GeoLite2-City.mmdb"); err == nil {
		t.Fatal("expected error for missing database")
	}
}
