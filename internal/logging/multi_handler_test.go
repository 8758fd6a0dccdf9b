package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestMultiHandler_DispatchesToAll(t *testing.T) {
	var a, b bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&a, nil),
		slog.NewJSONHandler(&b, nil),
	)
	logger := slog.New(h)

	logger.Info("fan out")

	if !strings.Contains(a.String(), "fan out") {
		t.Errorf("first handler missing record: %q", a.String())
	}
	if !strings.Contains(b.String(), "fan out") {
		t.Errorf("second handler missing record: %q", b.String())
	}
}

func TestMultiHandler_RespectsLevels(t *testing.T) {
	var debugBuf, infoBuf bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
	)
	logger := slog.New(h)

	logger.Debug("debug only")

	if !strings.Contains(debugBuf.String(), "debug only") {
		t.Error("debug handler should receive debug records")
	}
	if infoBuf.Len() != 0 {
		t.Errorf("info handler should not receive debug records: %q", infoBuf.String())
	}
}

func TestMultiHandler_Enabled(t *testing.T) {
	h := NewMultiHandler(
		slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}),
		slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo}),
	)

	if !h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Enabled should be true when any handler accepts the level")
	}
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Enabled should be false when no handler accepts the level")
	}
}

func TestMultiHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := NewMultiHandler(slog.NewTextHandler(&buf, nil))
	logger := slog.New(h).With("layout", "plugin")

	logger.Info("attached")

	if !strings.Contains(buf.String(), "layout=plugin") {
		t.Errorf("attribute missing from output: %q", buf.String())
	}
}
