package infra

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerClient_WritesFormattedMessages(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerClient(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	ctx := context.Background()

	logger.InfoWithContextf(ctx, "[Photo] uploaded %d", 7)
	logger.ErrorWithContextf(ctx, errors.New("boom"), "[Photo] failed %s", "x.jpg")
	logger.ErrorWithContextf(ctx, nil, "[Photo] no cause")

	out := buf.String()
	for _, want := range []string{"[Photo] uploaded 7", "[Photo] failed x.jpg", "error=boom", "[Photo] no cause"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected log output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestFanoutHandler_RespectsLevels(t *testing.T) {
	var infoBuf, errBuf bytes.Buffer
	handler := fanoutHandler{
		slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&errBuf, &slog.HandlerOptions{Level: slog.LevelError}),
	}
	logger := NewLoggerClient(slog.New(handler).With(slog.String("service", "test")))
	ctx := context.Background()

	logger.DebugWithContextf(ctx, "dropped")
	logger.WarningWithContextf(ctx, "warned")
	logger.ErrorWithContextf(ctx, nil, "failed")

	if strings.Contains(infoBuf.String(), "dropped") {
		t.Fatal("debug line must be filtered")
	}
	if !strings.Contains(infoBuf.String(), "warned") || !strings.Contains(infoBuf.String(), "service=test") {
		t.Fatalf("info handler missing lines: %s", infoBuf.String())
	}
	if strings.Contains(errBuf.String(), "warned") || !strings.Contains(errBuf.String(), "failed") {
		t.Fatalf("error handler got wrong lines: %s", errBuf.String())
	}
}
