package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func decodeEntries(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("warn", &buf)

	ctx := context.Background()
	logger.Debug(ctx, "debug msg")
	logger.Info(ctx, "info msg")
	logger.Warn(ctx, "warn msg")
	logger.Error(ctx, "error msg")

	entries := decodeEntries(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0]["level"] != "warn" || entries[1]["level"] != "error" {
		t.Errorf("levels = %v, %v", entries[0]["level"], entries[1]["level"])
	}
}

func TestLogger_WithService(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	scoped := logger.WithService(ServiceMeta{
		Service:        "calendly",
		ExternalUserID: "user-42",
		Operation:      "list_events",
	})
	scoped.Info(context.Background(), "operation completed")

	entries := decodeEntries(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	entry := entries[0]
	if entry["service"] != "calendly" {
		t.Errorf("service = %v", entry["service"])
	}
	if entry["operation"] != "list_events" {
		t.Errorf("operation = %v", entry["operation"])
	}
	if entry["external_user_id"] != "user-42" {
		t.Errorf("external_user_id = %v", entry["external_user_id"])
	}
	if entry["msg"] != "operation completed" {
		t.Errorf("msg = %v", entry["msg"])
	}
}

func TestLogger_RedactsSensitiveFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Info(context.Background(), "connecting",
		Field{Key: "api_key", Value: "hunter2"},
		Field{Key: "args", Value: map[string]any{"token": "x"}},
		Field{Key: "attempt", Value: 1},
	)

	entries := decodeEntries(t, &buf)
	entry := entries[0]
	if entry["api_key"] != "[REDACTED]" {
		t.Errorf("api_key = %v, want [REDACTED]", entry["api_key"])
	}
	if entry["args"] != "[REDACTED]" {
		t.Errorf("args = %v, want [REDACTED]", entry["args"])
	}
	if entry["attempt"] != float64(1) {
		t.Errorf("attempt = %v, want 1", entry["attempt"])
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLogLevel(tt.in); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNoopLogger(t *testing.T) {
	logger := NoopLogger()

	// Must not panic and WithService must return a usable logger
	scoped := logger.WithService(ServiceMeta{Service: "svc"})
	scoped.Info(context.Background(), "dropped")
	scoped.Error(context.Background(), "also dropped")
}
