package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCommonFields(t *testing.T) {
	fields := CommonFields("  gemini ", "text-embedding-004")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].Key != FieldProvider || fields[0].String != "gemini" {
		t.Fatalf("unexpected provider field: %+v", fields[0])
	}
	if fields[1].Key != FieldModel || fields[1].String != "text-embedding-004" {
		t.Fatalf("unexpected model field: %+v", fields[1])
	}

	if only := CommonFields("local", " "); len(only) != 1 || only[0].Key != FieldProvider {
		t.Fatalf("expected only the provider field, got %+v", only)
	}
}

func TestWithCommonFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithCommonFields(zap.New(core), "openai", "gpt-4o-mini").Info("generate content request")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx[FieldProvider] != "openai" || ctx[FieldModel] != "gpt-4o-mini" {
		t.Fatalf("unexpected fields: %v", ctx)
	}

	// nil falls back to a no-op logger
	WithCommonFields(nil, "openai", "gpt-4o-mini").Info("dropped")
}

func TestComponent(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	Component(zap.New(core), "pipeline").Info("chunk stored", zap.String(FieldUploadID, "u1"))

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].LoggerName != "pipeline" {
		t.Fatalf("expected logger name pipeline, got %q", entries[0].LoggerName)
	}
	if entries[0].ContextMap()[FieldUploadID] != "u1" {
		t.Fatalf("expected upload id field, got %v", entries[0].ContextMap())
	}

	Component(nil, "composer").Info("noop")
}
