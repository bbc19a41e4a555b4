package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(Config{Level: "debug", Format: "console"})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("Expected debug level to be enabled")
	}
}

func TestWithAddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := (&Logger{zap.New(core)}).With(zap.String("job", "sweep"))

	logger.Info("done")
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["job"]; got != "sweep" {
		t.Errorf("Expected job field sweep, got %v", got)
	}
}

func TestGlobalDefaultsToNoOp(t *testing.T) {
	if L() == nil {
		t.Fatal("Expected a global logger")
	}
	if L().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("Expected the default global logger to discard everything")
	}
}
