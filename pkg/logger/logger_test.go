package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}

	if err := Init(WithFormat("xml")); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithOutput(&buf), WithFormat(FormatJSON)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	Get().Info(ctx, "assessment scored",
		String("kind", "cardiac"),
		Int("score", 42),
		Bool("fit_to_work", true),
		Error(errors.New("boom")),
	)

	out := buf.String()
	for _, want := range []string{`"msg":"assessment scored"`, `"kind":"cardiac"`, `"score":42`, `"fit_to_work":true`, `"source":"logger_test.go:`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

func TestLoggerNamedAndWith(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithOutput(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	Named("api").With(String("request_id", "r-1")).Warn(context.Background(), "rejected")

	out := buf.String()
	if !strings.Contains(out, "api.request_id=r-1") {
		t.Errorf("expected grouped field in %q", out)
	}
}

func TestSetLevelString(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithOutput(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	if err := SetLevelString("warning"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Level() != slog.LevelWarn {
		t.Fatalf("expected warn level, got %v", Level())
	}

	Get().Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %q", buf.String())
	}

	if err := SetLevelString("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	_ = SetLevelString("info")
}

func TestNewIsStandalone(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(WithOutput(&buf), WithFormat(FormatJSON))
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}

	l.Named("config").Warn(context.Background(), "reload failed", String("path", "risk.yaml"))
	if !strings.Contains(buf.String(), `"path":"risk.yaml"`) {
		t.Fatalf("expected field in output, got %q", buf.String())
	}

	if _, err := New(WithFormat("xml")); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
