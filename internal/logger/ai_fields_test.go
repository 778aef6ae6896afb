package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithAIFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	WithAIFields(logger, "  gemini  ", "gemini-2.5-pro").Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}

	fields := entries[0].ContextMap()
	if fields[FieldProvider] != "gemini" {
		t.Fatalf("expected trimmed provider field, got %v", fields[FieldProvider])
	}
	if fields[FieldModel] != "gemini-2.5-pro" {
		t.Fatalf("expected model field, got %v", fields[FieldModel])
	}
}

func TestWithAIFieldsNilLogger(t *testing.T) {
	logger := WithAIFields(nil, "", "")
	if logger == nil {
		t.Fatal("expected a usable logger")
	}

	// Must not panic.
	logger.Info("noop")
}
