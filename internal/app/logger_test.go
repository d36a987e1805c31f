package app

import (
	"context"
	"log/slog"
	"testing"
)

func TestLogLevelMapping(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for name, want := range cases {
		if got := logLevel(&Config{LogLevel: name}); got != want {
			t.Fatalf("logLevel(%q) = %v want %v", name, got, want)
		}
	}
	if got := logLevel(nil); got != slog.LevelInfo {
		t.Fatalf("nil config should default to info, got %v", got)
	}
}

func TestNewLoggerHonoursLevel(t *testing.T) {
	ctx := context.Background()

	quiet := NewLogger(&Config{LogLevel: "warn"})
	if quiet.Enabled(ctx, slog.LevelInfo) {
		t.Fatal("warn logger must drop info records")
	}
	if !quiet.Enabled(ctx, slog.LevelWarn) {
		t.Fatal("warn logger must keep warn records")
	}

	verbose := NewLogger(&Config{LogLevel: "debug", LogFormat: "json"})
	if !verbose.Enabled(ctx, slog.LevelDebug) {
		t.Fatal("debug logger must keep debug records")
	}
}
