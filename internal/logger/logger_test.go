package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestJSONLevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelWarn)
	log.Info("should not appear")
	log.Debug("also should not appear")

	if buf.Len() > 0 {
		t.Fatalf("expected no output for info/debug at warn level, got: %s", buf.String())
	}

	log.Warn("should appear", "key", "value")
	out := buf.String()
	if !strings.Contains(out, "should appear") || !strings.Contains(out, `"key":"value"`) {
		t.Fatalf("expected warn record with key, got: %s", out)
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	log := Discard()
	log.With("k", "v").WithGroup("g").Error("dropped")
}

func TestConfigure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   string
	}{
		{"json", `"msg":"hello"`},
		{"text", "msg=hello"},
		{"pretty", "n=3"},
		{"", "n=3"},
	}
	for _, tc := range tests {
		var buf bytes.Buffer
		log, err := Configure(&buf, tc.format, "debug")
		if err != nil {
			t.Fatalf("Configure(%q) error = %v", tc.format, err)
		}
		log.Debug("hello", "n", 3)
		if !strings.Contains(buf.String(), tc.want) {
			t.Fatalf("Configure(%q) output %q missing %q", tc.format, buf.String(), tc.want)
		}
	}

	if _, err := Configure(&bytes.Buffer{}, "xml", "info"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)

	ctx := WithContext(context.Background(), log)
	FromContext(ctx).Info("roundtrip test")
	if !strings.Contains(buf.String(), "roundtrip test") {
		t.Fatalf("expected message via context logger, got: %s", buf.String())
	}
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext with no logger returned nil")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tc := range tests {
		if got := ParseLevel(tc.input); got != tc.expected {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tc.input, tc.expected, got)
		}
	}
}

func TestPrettyHandlerGroupsAndAttrs(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)

	l := slog.New(h.WithAttrs([]slog.Attr{slog.String("service", "lmeval")}).WithGroup("a").WithGroup("b"))
	l.Info("nested", "key", "val")

	out := buf.String()
	if !strings.Contains(out, "service=lmeval") {
		t.Fatalf("expected handler attr in output, got: %s", out)
	}
	if !strings.Contains(out, "a.b.key=val") {
		t.Fatalf("expected 'a.b.key=val' in output, got: %s", out)
	}
	if h.WithGroup("") != h {
		t.Fatal("WithGroup empty string should return same handler")
	}
}

func TestPrettyValueFormatting(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := slog.New(NewPrettyHandler(&buf, nil))
	l.Info("values",
		"msg", "hello world",
		"plain", "simple",
		"perplexity", 12.5,
		"elapsed", 1500*time.Millisecond,
	)

	out := buf.String()
	for _, want := range []string{`msg="hello world"`, "plain=simple", "perplexity=12.5", "elapsed=1.5s"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got: %s", want, out)
		}
	}
}

func TestPrettyHandlerEnabled(t *testing.T) {
	t.Parallel()
	h := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected info to be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("expected error to be enabled at warn level")
	}
}

func TestNeedsQuoting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected bool
	}{
		{"simple", false},
		{"has space", true},
		{"has\ttab", true},
		{`has"quote`, true},
		{"a=b", true},
		{"", true},
	}
	for _, tc := range tests {
		if got := needsQuoting(tc.input); got != tc.expected {
			t.Errorf("needsQuoting(%q): expected %v, got %v", tc.input, tc.expected, got)
		}
	}
}
