package errors

import (
	"runtime"
)

const stackDepth = 32

// StackTrace is a list of program counters, only the first frame is used in the formatted output.
type StackTrace []uintptr

type stackTracer interface {
	StackTrace() StackTrace
}

func callers() StackTrace {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(3, pcs)
	return pcs[0:n]
}
