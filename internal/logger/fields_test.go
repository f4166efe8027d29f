package logger

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFieldsDropsBlanks(t *testing.T) {
	t.Parallel()

	fields := StringFields(
		StringField{Key: "  method  ", Value: "  rule_based  "},
		StringField{Key: FieldFallback, Value: "   "},
		StringField{Key: "   ", Value: "orphan"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}
	if fields[0].Key != "method" || fields[0].String != "rule_based" {
		t.Fatalf("unexpected field: %+v", fields[0])
	}
}

func TestWithModelFields(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.InfoLevel)
	WithModelFields(zap.New(core), "gemini", "gemini-2.5-pro", "premium").Info("ranked")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldProvider] != "gemini" || ctx[FieldModel] != "gemini-2.5-pro" || ctx[FieldTier] != "premium" {
		t.Fatalf("unexpected context %v", ctx)
	}

	if len(ModelFields("gemini", "", "")) != 1 {
		t.Fatal("empty model and tier must be omitted")
	}

	// A nil logger falls back to a no-op one.
	WithModelFields(nil, "gemini", "m", "fast").Info("discarded")
}

func TestMatchFields(t *testing.T) {
	t.Parallel()

	fields := MatchFields("ai_failed", "timeout", "timeout", "fast", 1500*time.Millisecond)

	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}

	want := map[string]any{
		FieldMethod:    "ai_failed",
		FieldFallback:  "timeout",
		FieldErrorKind: "timeout",
		FieldTier:      "fast",
		FieldElapsed:   1500 * time.Millisecond,
	}
	for k, v := range want {
		if enc.Fields[k] != v {
			t.Fatalf("field %s = %v, want %v", k, enc.Fields[k], v)
		}
	}

	success := MatchFields("ai_success", "", "", "", time.Second)
	if len(success) != 2 {
		t.Fatalf("expected method and elapsed only, got %d fields", len(success))
	}
}
