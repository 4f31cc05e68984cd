package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWritesServiceAndFlattensErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "worker", "info")

	logger.Debug("donation_submission_state")
	logger.Warn("nats_disconnected", "error", errors.New("connection reset"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected exactly one json record, got %q: %v", buf.String(), err)
	}
	if record["service"] != "worker" {
		t.Fatalf("expected service worker, got %v", record["service"])
	}
	if record["msg"] != "nats_disconnected" {
		t.Fatalf("unexpected msg %v", record["msg"])
	}
	if record["error"] != "connection reset" {
		t.Fatalf("expected flattened error, got %v", record["error"])
	}
}
