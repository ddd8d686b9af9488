// Package log provides a context aware structured logger backed by zap.
// Attributes are otel attribute.KeyValue pairs, so the same values can be used for logs and telemetry.
package log

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap/zapcore"
)

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
)

type Logger interface {
	contextLogger
	withAttributes
}

type contextLogger interface {
	// Debug logs message in the debug level, attributes from the ctxattr package are included.
	Debug(ctx context.Context, message string)
	// Info logs message in the info level, attributes from the ctxattr package are included.
	Info(ctx context.Context, message string)
	// Warn logs message in the warning level, attributes from the ctxattr package are included.
	Warn(ctx context.Context, message string)
	// Error logs message in the error level, attributes from the ctxattr package are included.
	Error(ctx context.Context, message string)

	Debugf(ctx context.Context, template string, args ...any)
	Infof(ctx context.Context, template string, args ...any)
	Warnf(ctx context.Context, template string, args ...any)
	Errorf(ctx context.Context, template string, args ...any)

	Sync() error
}

type withAttributes interface {
	With(attrs ...attribute.KeyValue) Logger
	// WithComponent appends the component name, nested components are separated by a dot.
	WithComponent(component string) Logger
	WithDuration(v time.Duration) Logger
}
