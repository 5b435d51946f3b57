package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit(t *testing.T) {
	log, err := Init("test-service", "info")
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if log == nil {
		t.Fatal("expected non-nil logger")
	}
	if zap.L() != log {
		t.Error("expected Init to install the global logger")
	}

	if _, err := Init("test-service", "loud"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}

func TestInitTo_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tacli.log")
	log, err := InitTo("tacli", "warn", path)
	if err != nil {
		t.Fatalf("InitTo: %v", err)
	}
	log.Info("dropped")
	log.Warn("kept", zap.Int("n", 1))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if strings.Contains(out, "dropped") || !strings.Contains(out, `"msg":"kept"`) || !strings.Contains(out, `"service":"tacli"`) {
		t.Errorf("unexpected log output: %s", out)
	}
}

func TestTraceID_RoundTrip(t *testing.T) {
	ctx := context.Background()

	if tid := TraceID(ctx); tid != "" {
		t.Errorf("expected empty trace id, got %q", tid)
	}

	ctx = WithTraceID(ctx, "test-trace-123")
	if tid := TraceID(ctx); tid != "test-trace-123" {
		t.Errorf("expected 'test-trace-123', got %q", tid)
	}
}

func TestGenerateTraceID(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 0, 123456789, time.UTC)
	tid := GenerateTraceID("NSE:3045", ts)

	if !strings.HasPrefix(tid, "NSE:3045-") {
		t.Errorf("expected trace id to start with 'NSE:3045-', got %s", tid)
	}
	if !strings.Contains(tid, "123456789") {
		t.Errorf("expected trace id to contain nanoseconds, got %s", tid)
	}
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	undo := zap.ReplaceGlobals(zap.New(core))
	defer undo()

	FromContext(context.Background()).Info("plain")
	FromContext(WithTraceID(context.Background(), "abc-123")).Info("traced")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if _, ok := entries[0].ContextMap()["trace_id"]; ok {
		t.Error("plain entry should carry no trace id")
	}
	if got := entries[1].ContextMap()["trace_id"]; got != "abc-123" {
		t.Errorf("expected trace_id=abc-123, got %v", got)
	}
}
