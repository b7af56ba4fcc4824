package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	FieldRunID    = "run_id"
	FieldDocument = "document"
	FieldClaim    = "claim"
	FieldStep     = "step"
	FieldProvider = "llm_provider"
	FieldModel    = "llm_model"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts key/value pairs into zap fields, dropping blank keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to l, defaulting to a no-op logger when l is nil.
func WithFields(l *zap.Logger, fields ...zap.Field) *zap.Logger {
	l = OrNop(l)
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

// WithProvider tags l with the completion provider and model.
func WithProvider(l *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(l, StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)...)
}

// ClaimField returns a claim text field truncated for log lines.
func ClaimField(text string) zap.Field {
	return zap.String(FieldClaim, TruncateForLog(text, 80))
}
