package app

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newTestPretty(buf *bytes.Buffer, color bool) *slog.Logger {
	return slog.New(newPrettyHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}, color))
}

func TestPrettyHandler_Line(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := newTestPretty(&buf, false)

	log.Info("resolve.done", "tier", "login", "duration_ms", int64(812), "token_fp", "3f9a0c1b2d4e")

	line := strings.TrimSuffix(buf.String(), "\n")
	for _, want := range []string{"[INFO]", "resolve.done", "tier=login", "duration=812ms", "token_fp=3f9a0c1b2d4e"} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Fatalf("expected exactly one line, got %q", buf.String())
	}
}

func TestPrettyHandler_QuotesAndGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := newTestPretty(&buf, false).WithGroup("store").With("backend", "file")

	log.Error("store.write.fail", "err", errors.New("disk full: no space"))

	out := buf.String()
	if !strings.Contains(out, "store.backend=file") {
		t.Fatalf("group prefix missing: %q", out)
	}
	if !strings.Contains(out, `store.err="disk full: no space"`) {
		t.Fatalf("value with spaces must be quoted: %q", out)
	}
	if !strings.Contains(out, "[ERROR]") {
		t.Fatalf("level tag missing: %q", out)
	}
}

func TestPrettyHandler_Color(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := newTestPretty(&buf, true)

	log.Debug("resolve.state", "from", "EMPTY", "to", "VALIDATING")

	out := buf.String()
	if !strings.Contains(out, ansiMagenta+"[DEBUG]"+ansiReset) {
		t.Fatalf("debug tag not colorized: %q", out)
	}
	if !strings.Contains(out, ansiMagenta+"VALIDATING"+ansiReset) {
		t.Fatalf("state not colorized: %q", out)
	}
}

func TestPrettyHandler_Enabled(t *testing.T) {
	t.Parallel()

	h := newPrettyHandler(&bytes.Buffer{}, nil, false)
	if h.Enabled(t.Context(), slog.LevelDebug) {
		t.Fatalf("default level must filter debug")
	}
	if !h.Enabled(t.Context(), slog.LevelInfo) {
		t.Fatalf("default level must allow info")
	}
}
