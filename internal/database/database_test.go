package database

import (
	"context"
	"testing"
)

func TestOpenBadDSN(t *testing.T) {
	if _, err := Open(context.Background(), "not a dsn"); err == nil {
		t.Fatal("expected error for malformed DSN")
	}
}

func TestOpenUnreachable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Open(ctx, "u:p@tcp(127.0.0.1:1)/cadence"); err == nil {
		t.Fatal("expected ping error")
	}
}
