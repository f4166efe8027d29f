package logger

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	FieldProvider = "ai_provider"
	FieldModel    = "ai_model"
	FieldTier     = "tier"

	FieldCacheKey  = "cache_key"
	FieldIdentity  = "identity"
	FieldMethod    = "method"
	FieldFallback  = "fallback"
	FieldErrorKind = "error_kind"
	FieldElapsed   = "elapsed"
)

// StringField is a key/value pair logged only when both sides are non-blank.
type StringField struct {
	Key   string
	Value string
}

// StringFields trims the pairs and drops the blank ones.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		value := strings.TrimSpace(field.Value)
		if key == "" || value == "" {
			continue
		}
		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to logger. A nil logger becomes a no-op one.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// ModelFields describe which provider, model and tier served a call.
func ModelFields(provider, model, tier string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
		StringField{Key: FieldTier, Value: tier},
	)
}

func WithModelFields(logger *zap.Logger, provider, model, tier string) *zap.Logger {
	return WithFields(logger, ModelFields(provider, model, tier)...)
}

// MatchFields describe the outcome of one match request.
func MatchFields(method, fallback, errorKind, tier string, elapsed time.Duration) []zap.Field {
	fields := StringFields(
		StringField{Key: FieldMethod, Value: method},
		StringField{Key: FieldFallback, Value: fallback},
		StringField{Key: FieldErrorKind, Value: errorKind},
		StringField{Key: FieldTier, Value: tier},
	)
	return append(fields, zap.Duration(FieldElapsed, elapsed))
}
