package log

import (
	"bufio"
	"bytes"
	"strings"
	"sync"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/keboola/sheets-writer/internal/pkg/encoding/json"
)

// DebugLogger returns logs as string in tests.
type DebugLogger interface {
	Logger
	Truncate()
	AllMessages() string
	WarnAndErrorMessages() string
	CompareJSONMessages(expected string) error
	AssertJSONMessages(t assert.TestingT, expected string, msgAndArgs ...any) bool
}

type debugLogger struct {
	*zapLogger
	out *syncBuffer
}

type syncBuffer struct {
	lock *sync.Mutex
	buf  bytes.Buffer
}

// NewDebugLogger creates a logger which stores all messages in memory as JSON lines.
func NewDebugLogger() DebugLogger {
	out := &syncBuffer{lock: &sync.Mutex{}}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(debugEncoderConfig()), out, zap.NewAtomicLevelAt(DebugLevel))
	return &debugLogger{zapLogger: loggerFromZapCore(core), out: out}
}

func (l *debugLogger) Truncate() {
	l.out.lock.Lock()
	defer l.out.lock.Unlock()
	l.out.buf.Reset()
}

func (l *debugLogger) AllMessages() string {
	l.out.lock.Lock()
	defer l.out.lock.Unlock()
	return l.out.buf.String()
}

// WarnAndErrorMessages returns only warning and error JSON lines.
func (l *debugLogger) WarnAndErrorMessages() string {
	var out strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(l.AllMessages()))
	for scanner.Scan() {
		var msg struct {
			Level string `json:"level"`
		}
		if err := json.Decode(scanner.Bytes(), &msg); err != nil {
			continue
		}
		if msg.Level == WarnLevel.String() || msg.Level == ErrorLevel.String() {
			out.WriteString(scanner.Text())
			out.WriteString("\n")
		}
	}
	return out.String()
}

func (l *debugLogger) CompareJSONMessages(expected string) error {
	return CompareJSONMessages(expected, l.AllMessages())
}

func (l *debugLogger) AssertJSONMessages(t assert.TestingT, expected string, msgAndArgs ...any) bool {
	return AssertJSONMessages(t, expected, l.AllMessages(), msgAndArgs...)
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Sync() error {
	return nil
}

func debugEncoderConfig() zapcore.EncoderConfig {
	cfg := jsonEncoderConfig()
	cfg.TimeKey = "" // stable output
	return cfg
}
