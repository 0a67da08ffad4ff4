package jobtrace_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/queueworks/jobtrace"
)

func TestLoggingSuccess(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	mw := jobtrace.Logging(logger, "queue", "class", "missing")
	d := jobtrace.Descriptor{"queue": "default", "class": "MailerJob"}

	err := mw(context.Background(), d, func(ctx context.Context, d jobtrace.Descriptor) error {
		return nil
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}

	var startEntry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &startEntry); err != nil {
		t.Fatalf("failed to parse start log: %v", err)
	}
	if startEntry["msg"] != "job started" {
		t.Errorf("expected 'job started', got %v", startEntry["msg"])
	}
	if startEntry["job.queue"] != "default" {
		t.Errorf("expected job.queue=default, got %v", startEntry["job.queue"])
	}
	if _, ok := startEntry["job.missing"]; ok {
		t.Error("absent descriptor key should not be logged")
	}

	var endEntry map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &endEntry); err != nil {
		t.Fatalf("failed to parse end log: %v", err)
	}
	if endEntry["msg"] != "job completed" {
		t.Errorf("expected 'job completed', got %v", endEntry["msg"])
	}
	if endEntry["level"] != "INFO" {
		t.Errorf("expected level=INFO, got %v", endEntry["level"])
	}
	if _, ok := endEntry["duration_ms"]; !ok {
		t.Error("expected duration_ms in completion log")
	}
}

func TestLoggingError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	mw := jobtrace.Logging(logger, "class")
	jobErr := errors.New("boom")

	err := mw(context.Background(), jobtrace.Descriptor{"class": "MailerJob"},
		func(ctx context.Context, d jobtrace.Descriptor) error {
			return jobErr
		})
	if err != jobErr {
		t.Fatalf("middleware altered the error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(lines))
	}
	var endEntry map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &endEntry); err != nil {
		t.Fatalf("failed to parse end log: %v", err)
	}
	if endEntry["msg"] != "job failed" {
		t.Errorf("expected 'job failed', got %v", endEntry["msg"])
	}
	if endEntry["level"] != "ERROR" {
		t.Errorf("expected level=ERROR, got %v", endEntry["level"])
	}
	if endEntry["error"] != "boom" {
		t.Errorf("expected error=boom, got %v", endEntry["error"])
	}
}
