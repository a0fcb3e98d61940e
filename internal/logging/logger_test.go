package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"framesight/internal/logging"
	"framesight/internal/services"
)

func TestNewWritesJSONToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")

	logger, err := logging.New(logging.Options{
		Level:       "debug",
		Format:      "json",
		OutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("pipeline started", logging.String("video", "clip.mp4"), logging.Int("frames", 42))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("parse log line %q: %v", data, err)
	}
	if record["msg"] != "pipeline started" {
		t.Fatalf("unexpected msg: %v", record["msg"])
	}
	if record["level"] != "info" {
		t.Fatalf("unexpected level: %v", record["level"])
	}
	if record["video"] != "clip.mp4" {
		t.Fatalf("unexpected video field: %v", record["video"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestConsoleFormatIncludesAttrs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "console.log")

	logger, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Warn("stage degraded", logging.String("stage", "semantic"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, "WARN") {
		t.Fatalf("expected level label in %q", line)
	}
	if !strings.Contains(line, "stage=semantic") {
		t.Fatalf("expected attr in %q", line)
	}
}

func TestWithContextAddsAnalysisFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ctx.log")

	base, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := services.WithAnalysisID(context.Background(), "a-123")
	ctx = services.WithStage(ctx, "tracking")
	logging.WithContext(ctx, base).Info("hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("parse log line: %v", err)
	}
	if record[logging.FieldAnalysisID] != "a-123" {
		t.Fatalf("missing analysis id: %v", record)
	}
	if record[logging.FieldStage] != "tracking" {
		t.Fatalf("missing stage: %v", record)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	// Must not panic and must report disabled at every level.
	logger.Error("ignored")
	if logger.Enabled(context.Background(), 0) {
		t.Fatal("expected nop logger to be disabled")
	}
}
