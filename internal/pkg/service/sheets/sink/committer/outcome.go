package committer

import (
	"time"
)

const (
	// RecordInserted - the row has been appended to the worksheet.
	RecordInserted RecordStatus = iota
	// RecordFailed - the row has not been appended, the task continues with the next record.
	RecordFailed
)

type RecordStatus int

// Outcome of one record.
type Outcome struct {
	// RecordIndex is a zero-based position of the record in the task.
	RecordIndex int64
	Status      RecordStatus
	// RowID identifies the appended row, it is empty on failure.
	RowID string
	Err   error
}

// Result of the task, returned by Finish.
// It carries no resumption state.
type Result struct {
	Processed int64
	Inserted  int64
	Failed    int64
	// Failures contains failed outcomes in the processing order, up to the configured limit.
	Failures   []Outcome
	StartedAt  time.Time
	FinishedAt time.Time
}

func (s RecordStatus) String() string {
	switch s {
	case RecordInserted:
		return "inserted"
	case RecordFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (o Outcome) Inserted() bool {
	return o.Status == RecordInserted
}

// FailuresTruncated is true if some failed outcomes are counted, but not listed.
func (r Result) FailuresTruncated() bool {
	return int64(len(r.Failures)) < r.Failed
}

func (r Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
