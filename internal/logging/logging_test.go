package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupConsole(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger, closeFn, err := Setup(Options{Level: slog.LevelInfo, Console: &buf})
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	defer closeFn()

	logger.Debug("hidden")
	logger.Info("switched database", "to", "B")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected debug record to be filtered, got:\n%s", out)
	}
	if !strings.Contains(out, "switched database") || !strings.Contains(out, "to=B") {
		t.Errorf("expected info record, got:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("expected no color codes for a non-terminal writer, got %q", out)
	}
	if slog.Default() != logger {
		t.Error("expected Setup to install the default logger")
	}
}

func TestSetupFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "logs", "dbref.log")
	var buf bytes.Buffer
	logger, closeFn, err := Setup(Options{Level: slog.LevelDebug, Console: &buf, File: path})
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}

	logger.With("component", "resolver").Debug("released handle")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	for _, out := range []string{string(data), buf.String()} {
		if !strings.Contains(out, "released handle") || !strings.Contains(out, "component=resolver") {
			t.Errorf("expected record in both sinks, got:\n%s", out)
		}
	}
}

func TestDiscard(t *testing.T) {
	if Discard().Enabled(context.Background(), slog.LevelError) {
		t.Error("expected discard logger to be disabled")
	}
}
