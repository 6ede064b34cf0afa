package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"redraft/internal/services"
)

func TestPrettyHandlerIncludesComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	NewComponentLogger(logger, "workflow").Info("job claimed", String(FieldJobID, "abc"))

	out := buf.String()
	if !strings.Contains(out, "workflow: job claimed") {
		t.Errorf("missing component prefix: %q", out)
	}
	if !strings.Contains(out, "job_id=abc") {
		t.Errorf("missing attr: %q", out)
	}
}

func TestPrettyHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	logger.Info("event", String("filename", "my upload.docx"))

	if !strings.Contains(buf.String(), `filename="my upload.docx"`) {
		t.Errorf("value not quoted: %q", buf.String())
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	ctx := services.WithStage(services.WithJobID(context.Background(), "job-1"), "transforming")
	WithContext(ctx, logger).Info("progress")

	out := buf.String()
	if !strings.Contains(out, "job_id=job-1") || !strings.Contains(out, "stage=transforming") {
		t.Errorf("context fields missing: %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if got := parseLevel("nonsense"); got != slog.LevelInfo {
		t.Errorf("parseLevel = %v", got)
	}
}
