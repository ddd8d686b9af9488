package log

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/keboola/sheets-writer/internal/pkg/ctxattr"
)

const (
	componentKey = "component"
	durationKey  = "duration"
)

// zapLogger is default implementation of the Logger interface.
type zapLogger struct {
	core      *zap.Logger
	component string
	attrs     []attribute.KeyValue
}

func loggerFromZapCore(core zapcore.Core) *zapLogger {
	return &zapLogger{core: zap.New(core)}
}

func (l *zapLogger) With(attrs ...attribute.KeyValue) Logger {
	clone := *l
	clone.attrs = append(append([]attribute.KeyValue{}, l.attrs...), attrs...)
	return &clone
}

func (l *zapLogger) WithComponent(component string) Logger {
	clone := *l
	if clone.component == "" {
		clone.component = component
	} else {
		clone.component += "." + component
	}
	return &clone
}

func (l *zapLogger) WithDuration(v time.Duration) Logger {
	return l.With(attribute.String(durationKey, v.String()))
}

func (l *zapLogger) Debug(ctx context.Context, message string) {
	l.log(ctx, DebugLevel, message)
}

func (l *zapLogger) Info(ctx context.Context, message string) {
	l.log(ctx, InfoLevel, message)
}

func (l *zapLogger) Warn(ctx context.Context, message string) {
	l.log(ctx, WarnLevel, message)
}

func (l *zapLogger) Error(ctx context.Context, message string) {
	l.log(ctx, ErrorLevel, message)
}

func (l *zapLogger) Debugf(ctx context.Context, template string, args ...any) {
	l.logf(ctx, DebugLevel, template, args)
}

func (l *zapLogger) Infof(ctx context.Context, template string, args ...any) {
	l.logf(ctx, InfoLevel, template, args)
}

func (l *zapLogger) Warnf(ctx context.Context, template string, args ...any) {
	l.logf(ctx, WarnLevel, template, args)
}

func (l *zapLogger) Errorf(ctx context.Context, template string, args ...any) {
	l.logf(ctx, ErrorLevel, template, args)
}

func (l *zapLogger) Sync() error {
	return l.core.Sync()
}

// logf formats the message only if the level is enabled.
func (l *zapLogger) logf(ctx context.Context, level zapcore.Level, template string, args []any) {
	if l.core.Core().Enabled(level) {
		l.log(ctx, level, fmt.Sprintf(template, args...))
	}
}

func (l *zapLogger) log(ctx context.Context, level zapcore.Level, message string) {
	entry := l.core.Check(level, message)
	if entry == nil {
		return
	}

	// Context attributes first, so the logger attributes can override them
	ctxAttrs := ctxattr.Attributes(ctx).ToSlice()
	fields := make([]zap.Field, 0, len(ctxAttrs)+len(l.attrs)+1)
	for _, kv := range ctxAttrs {
		fields = append(fields, zap.Any(string(kv.Key), kv.Value.AsInterface()))
	}
	for _, kv := range l.attrs {
		fields = append(fields, zap.Any(string(kv.Key), kv.Value.AsInterface()))
	}
	if l.component != "" {
		fields = append(fields, zap.String(componentKey, l.component))
	}

	entry.Write(fields...)
}
