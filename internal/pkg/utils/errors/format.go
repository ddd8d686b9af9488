package errors

import (
	"fmt"
	"runtime"
	"strings"
)

const (
	Indent = "  "
	Bullet = "- "
)

type FormatOption func(c *formatConfig)

type formatConfig struct {
	withStack bool
}

// FormatWithStack adds the first frame of the stack trace after each message.
func FormatWithStack() FormatOption {
	return func(c *formatConfig) {
		c.withStack = true
	}
}

// Format error to a multi-line string, nested and multi errors are written as a bullet list.
func Format(err error, opts ...FormatOption) string {
	cfg := formatConfig{}
	for _, o := range opts {
		o(&cfg)
	}
	w := &writer{config: cfg}
	w.writeError(0, err)
	return w.out.String()
}

type writer struct {
	config formatConfig
	out    strings.Builder
}

func (w *writer) writeError(level int, err error) {
	// nolint:errorlint
	switch v := err.(type) {
	case nestedErrorGetter:
		w.writeNested(level, v.MainError(), v.WrappedErrors())
	case multiErrorGetter:
		w.writeList(level, v.WrappedErrors())
	default:
		w.out.WriteString(w.message(err))
	}
}

func (w *writer) writeNested(level int, main error, errs []error) {
	mainWriter := &writer{config: w.config}
	mainWriter.writeError(level, main)
	prefix := strings.TrimRight(mainWriter.out.String(), ".,:") + ":"

	switch {
	case len(errs) == 0:
		w.out.WriteString(mainWriter.out.String())
	case len(errs) == 1:
		subWriter := &writer{config: w.config}
		subWriter.writeError(level+1, errs[0])
		sub := subWriter.out.String()
		if len(prefix)+len(sub) > 60 || strings.Contains(sub, "\n") {
			w.out.WriteString(prefix + "\n" + strings.Repeat(Indent, level) + Bullet + sub)
		} else {
			w.out.WriteString(prefix + " " + sub)
		}
	default:
		w.out.WriteString(prefix + "\n")
		w.writeList(level, errs)
	}
}

func (w *writer) writeList(level int, errs []error) {
	for i, err := range errs {
		if i > 0 {
			w.out.WriteString("\n")
		}
		w.out.WriteString(strings.Repeat(Indent, level) + Bullet)
		w.writeError(level+1, err)
	}
}

func (w *writer) message(err error) string {
	msg := err.Error()
	if w.config.withStack {
		var tracer stackTracer
		if As(err, &tracer) {
			if trace := tracer.StackTrace(); len(trace) > 0 {
				fn := runtime.FuncForPC(trace[0])
				if fn != nil {
					file, line := fn.FileLine(trace[0])
					msg = fmt.Sprintf("%s [%s:%d]", msg, file, line)
				}
			}
		}
	}
	return msg
}
