package committer

import (
	"fmt"

	"github.com/keboola/sheets-writer/internal/pkg/utils/errors"
)

const (
	StateUnopened State = iota
	StateOpen
	StateAppending
	StateFinished
	StateAborted
)

// State of the committer lifecycle: Unopened => Open => Appending => Finished | Aborted.
type State int

// ErrInvalidState is matched by all InvalidStateError values.
var ErrInvalidState = errors.New("invalid committer state")

type InvalidStateError struct {
	Operation string
	State     State
}

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateOpen:
		return "open"
	case StateAppending:
		return "appending"
	case StateFinished:
		return "finished"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (e InvalidStateError) Error() string {
	return fmt.Sprintf(`cannot %s, the committer is %s`, e.Operation, e.State)
}

func (e InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState // nolint: errorlint
}
