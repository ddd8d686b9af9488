package log

import (
	"context"
	"strings"

	"go.uber.org/zap/zapcore"
)

// LevelWriter adapts the Logger to io.Writer, each line is logged as a message with the level.
// It is used to redirect output of third party libraries, for example the HTTP client debug output.
type LevelWriter struct {
	ctx    context.Context
	logger Logger
	level  zapcore.Level
}

func NewLevelWriter(ctx context.Context, logger Logger, level zapcore.Level) *LevelWriter {
	return &LevelWriter{ctx: ctx, logger: logger, level: level}
}

// Write messages with the defined level to the logger.
func (w *LevelWriter) Write(p []byte) (n int, err error) {
	lines := strings.TrimRight(string(p), "\n")
	for _, line := range strings.Split(lines, "\n") {
		msg := strings.TrimRight(line, "\r")
		switch w.level {
		case DebugLevel:
			w.logger.Debug(w.ctx, msg)
		case InfoLevel:
			w.logger.Info(w.ctx, msg)
		case WarnLevel:
			w.logger.Warn(w.ctx, msg)
		case ErrorLevel:
			w.logger.Error(w.ctx, msg)
		default:
			w.logger.Info(w.ctx, msg)
		}
	}
	return len(p), nil
}

// Errorf and Warnf implement the resty.Logger interface.
func (w *LevelWriter) Errorf(format string, v ...any) {
	w.logger.Errorf(w.ctx, strings.TrimRight(format, "\n"), v...)
}

func (w *LevelWriter) Warnf(format string, v ...any) {
	w.logger.Warnf(w.ctx, strings.TrimRight(format, "\n"), v...)
}

func (w *LevelWriter) Debugf(format string, v ...any) {
	w.logger.Debugf(w.ctx, strings.TrimRight(format, "\n"), v...)
}
