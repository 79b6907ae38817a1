package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestDefaultDoesNotPanic(t *testing.T) {
	t.Parallel()
	log := Default()
	if log == nil {
		t.Fatal("Default() returned nil")
	}
	log.Debug("d")
	log.Info("i")
	log.Warn("w")
	log.Error("e")
}

func TestJSONOutput(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	log.Info("fit converged", "iterations", 7)

	out := buf.String()
	if !strings.Contains(out, "fit converged") {
		t.Fatalf("missing message in output: %s", out)
	}
	if !strings.Contains(out, `"iterations":7`) {
		t.Fatalf("missing attr in JSON output: %s", out)
	}
	if !strings.Contains(out, `"level":"INFO"`) {
		t.Fatalf("missing level in output: %s", out)
	}
}

func TestJSONLevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelWarn)
	log.Debug("hidden")
	log.Info("hidden")
	if buf.Len() > 0 {
		t.Fatalf("expected no output below warn, got: %s", buf.String())
	}
	log.Warn("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("expected warn message, got: %s", buf.String())
	}
}

func TestDiscardWritesNothing(t *testing.T) {
	t.Parallel()
	log := Discard()
	log.Error("swallowed")
	log.With("k", "v").Info("also swallowed")
}

func TestPrettyOutput(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := Pretty(&buf, slog.LevelInfo)
	log.Info("hello", "channel", "singlechannel")

	out := buf.String()
	if !strings.Contains(out, "hello") {
		t.Fatalf("missing message: %s", out)
	}
	if !strings.Contains(out, "channel=singlechannel") {
		t.Fatalf("missing attr: %s", out)
	}
}

func TestPrettyDebugLevel(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := Pretty(&buf, slog.LevelDebug)
	log.Debug("newton step")
	if !strings.Contains(buf.String(), "newton step") {
		t.Fatalf("expected debug message, got: %s", buf.String())
	}
}

func TestWithAddsAttrs(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	log.With("component", "optimizer").Info("step")

	out := buf.String()
	if !strings.Contains(out, `"component":"optimizer"`) {
		t.Fatalf("missing With attr: %s", out)
	}
}

func TestWithGroup(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	log.WithGroup("fit").Info("done", "mu", 1.0)

	out := buf.String()
	if !strings.Contains(out, "done") {
		t.Fatalf("missing message: %s", out)
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)

	ctx := WithContext(context.Background(), log)
	FromContext(ctx).Info("via context")
	if !strings.Contains(buf.String(), "via context") {
		t.Fatalf("context logger not used: %s", buf.String())
	}
}

func TestFromContextFallsBack(t *testing.T) {
	t.Parallel()
	log := FromContext(context.Background())
	if log == nil {
		t.Fatal("FromContext returned nil for empty context")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"Error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range tests {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestPrettyHandlerEnabled(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}

func TestPrettyHandlerWithAttrs(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)
	log := slog.New(h.WithAttrs([]slog.Attr{slog.String("poi", "mu")}))
	log.Info("attrs")

	if !strings.Contains(buf.String(), "poi=mu") {
		t.Fatalf("expected handler attr, got: %s", buf.String())
	}
}

func TestPrettyHandlerNestedGroups(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)
	log := slog.New(h.WithGroup("a").WithGroup("b"))
	log.Info("nested", "key", "val")

	if !strings.Contains(buf.String(), "a.b.key=val") {
		t.Fatalf("expected dotted group key, got: %s", buf.String())
	}
}

func TestPrettyHandlerEmptyGroupIsNoop(t *testing.T) {
	t.Parallel()
	h := NewPrettyHandler(&bytes.Buffer{}, nil)
	if h.WithGroup("") != slog.Handler(h) {
		t.Fatal("WithGroup(\"\") should return the receiver")
	}
}

func TestPrettyQuoting(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil))
	log.Info("q", "a", "two words", "b", "plain")

	out := buf.String()
	if !strings.Contains(out, `a="two words"`) {
		t.Fatalf("expected quoted value, got: %s", out)
	}
	if !strings.Contains(out, "b=plain") || strings.Contains(out, `b="plain"`) {
		t.Fatalf("plain value should stay unquoted, got: %s", out)
	}
}

func TestNeedsQuoting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"plain", false},
		{"two words", true},
		{"tab\there", true},
		{"line\nbreak", true},
		{`has"quote`, true},
		{"", false},
	}
	for _, tc := range tests {
		if got := needsQuoting(tc.in); got != tc.want {
			t.Errorf("needsQuoting(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
