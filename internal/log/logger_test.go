package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func newCaptureLogger(component string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Component = component
	cfg.Handler = slog.NewTextHandler(&buf, nil)
	return New(cfg), &buf
}

func TestLoggerAttachesComponent(t *testing.T) {
	logger, buf := newCaptureLogger(ComponentCatchUp)

	logger.Info("catch-up complete", FieldMaterialized, 3)

	out := buf.String()
	if !strings.Contains(out, "component=catchup") {
		t.Errorf("expected component field, got: %s", out)
	}
	if !strings.Contains(out, "materialized=3") {
		t.Errorf("expected materialized field, got: %s", out)
	}
}

func TestWithComponent(t *testing.T) {
	logger, buf := newCaptureLogger(ComponentApp)

	scoped := logger.WithComponent(ComponentStorage)
	if scoped.Component() != ComponentStorage {
		t.Errorf("expected component %q, got %q", ComponentStorage, scoped.Component())
	}

	scoped.Error("insert failed", FieldError, "disk full")
	if !strings.Contains(buf.String(), "component=storage") {
		t.Errorf("expected storage component, got: %s", buf.String())
	}
}
