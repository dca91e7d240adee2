package form

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"
)

func TestCSRFRoundTrip(t *testing.T) {
	tok, err := GenerateToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !VerifyToken(tok) {
		t.Fatal("fresh token rejected")
	}
}

func TestCSRFRejects(t *testing.T) {
	tok, _ := GenerateToken()

	tampered := []byte(tok)
	if tampered[0] == 'A' {
		tampered[0] = 'B'
	} else {
		tampered[0] = 'A'
	}
	for _, bad := range []string{"", "garbage", string(tampered)} {
		if VerifyToken(bad) {
			t.Fatalf("accepted %q", bad)
		}
	}

	old, _ := generateAt(time.Now().Add(-3 * time.Hour))
	if VerifyToken(old) {
		t.Fatal("expired token accepted")
	}
	future, _ := generateAt(time.Now().Add(10 * time.Minute))
	if VerifyToken(future) {
		t.Fatal("future token accepted")
	}
}

func TestSetKey(t *testing.T) {
	if err := SetKey(base64.RawURLEncoding.EncodeToString([]byte("short"))); err != ErrShortKey {
		t.Fatalf("want ErrShortKey, got %v", err)
	}
	if err := SetKey("!!!"); err == nil {
		t.Fatal("expected decode error")
	}
	key := base64.RawURLEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))
	if err := SetKey(key); err != nil {
		t.Fatalf("SetKey: %v", err)
	}
	tok, _ := GenerateToken()
	if !VerifyToken(tok) {
		t.Fatal("token under new key rejected")
	}
}
