package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Field keys shared by components.
const (
	FieldProvider = "ai_provider"
	FieldModel    = "ai_model"
	FieldUploadID = "upload_id"
	FieldSource   = "source"
)

// CommonFields tags a model client. Blank values are left out.
func CommonFields(provider, model string) []zap.Field {
	fields := make([]zap.Field, 0, 2)
	if provider = strings.TrimSpace(provider); provider != "" {
		fields = append(fields, zap.String(FieldProvider, provider))
	}
	if model = strings.TrimSpace(model); model != "" {
		fields = append(fields, zap.String(FieldModel, model))
	}
	return fields
}

// WithCommonFields returns log tagged with provider and model.
func WithCommonFields(log *zap.Logger, provider, model string) *zap.Logger {
	return orNop(log).With(CommonFields(provider, model)...)
}

// Component returns a named child of log, e.g. "pipeline" or "composer".
func Component(log *zap.Logger, name string) *zap.Logger {
	return orNop(log).Named(name)
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
