package logger

import (
	"context"
	"os"
	"testing"

	"go.uber.org/zap"
)

func TestFromContextFallsBackToGlobal(t *testing.T) {
	if FromContext(context.Background()) != zap.S() {
		t.Fatal("expected global logger")
	}
}

func TestWithContextRoundTrip(t *testing.T) {
	l := zap.NewNop().Sugar()
	ctx := WithContext(context.Background(), l)
	if FromContext(ctx) != l {
		t.Fatal("logger not carried in context")
	}
}

func TestNewCreatesDir(t *testing.T) {
	prev := zap.L()
	defer zap.ReplaceGlobals(prev)

	dir := t.TempDir() + "/logs"
	if _, err := New(dir, "debug", false); err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("log dir missing: %v", err)
	}
	if _, err := New(dir, "loud", false); err == nil {
		t.Fatal("expected bad level error")
	}
}
