package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	return m
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug": zerolog.DebugLevel,
		"info":  zerolog.InfoLevel,
		"warn":  zerolog.WarnLevel,
		"error": zerolog.ErrorLevel,
		"":      zerolog.InfoLevel,
		"loud":  zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConsoleWriterHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithConfig(LogConfig{Level: "warn", Console: true, Out: &buf})

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestFileWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "dashboard.log")
	logger := NewLoggerWithConfig(LogConfig{Level: "info", File: true, FilePath: path, MaxSize: 1})

	logger.Info().Str("ticker", "AAPL").Msg("written")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"ticker":"AAPL"`) {
		t.Errorf("log file = %q", data)
	}
}

func TestLogQuote(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	LogQuote(logger, "MSFT", 0, true, errors.New("timeout"))
	m := decodeLine(t, &buf)
	if m["level"] != "warn" || m["fallback"] != true || m["error"] != "timeout" {
		t.Errorf("fallback quote log = %v", m)
	}

	buf.Reset()
	LogQuote(logger, "MSFT", 410.5, false, nil)
	m = decodeLine(t, &buf)
	if m["level"] != "info" || m["price"] != 410.5 {
		t.Errorf("quote log = %v", m)
	}
}

func TestLogRequestLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	for status, level := range map[int]string{200: "info", 400: "warn", 503: "error"} {
		buf.Reset()
		LogRequest(logger, "GET", "/api/payoff", status, time.Millisecond)
		if m := decodeLine(t, &buf); m["level"] != level {
			t.Errorf("status %d logged at %v, want %s", status, m["level"], level)
		}
	}
}

func TestContextHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := WithTicker(zerolog.New(&buf), "SPY")

	ctx := WithRequestID(WithLogger(context.Background(), logger), "req-1")
	if RequestID(ctx) != "req-1" {
		t.Errorf("request id = %q", RequestID(ctx))
	}
	ctxLogger := FromContext(ctx)
	ctxLogger.Info().Msg("x")
	if m := decodeLine(t, &buf); m["ticker"] != "SPY" {
		t.Errorf("context logger lost fields: %v", m)
	}

	// A bare context yields a no-op logger.
	nop := FromContext(context.Background())
	nop.Info().Msg("dropped")
	if RequestID(context.Background()) != "" {
		t.Error("expected empty request id")
	}
}
