// Package committer appends encoded rows to the worksheet, one remote call per row.
//
// A failed append does not stop the task, the failure is logged, counted and returned in the Result.
// Already appended rows are never removed, Abort only invokes the registered rollback callbacks,
// there are none by default.
package committer

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"

	"github.com/keboola/sheets-writer/internal/pkg/encoding/json"
	"github.com/keboola/sheets-writer/internal/pkg/log"
	"github.com/keboola/sheets-writer/internal/pkg/service/common/rollback"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/mapping/row"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/store"
	"github.com/keboola/sheets-writer/internal/pkg/telemetry"
	"github.com/keboola/sheets-writer/internal/pkg/utils/errors"
)

const (
	DefaultMaxReportedFailures = 1000
	maxRowSummaryLength        = 200
)

type Config struct {
	Credentials store.Credentials
	Ref         store.Ref
	// Columns define the order of values in the appended row.
	Columns []string
	// MaxReportedFailures limits the number of failed outcomes kept in the Result, counters are not limited.
	MaxReportedFailures int
}

type dependencies interface {
	Logger() log.Logger
	Telemetry() telemetry.Telemetry
	Clock() clockwork.Clock
	Authenticator() store.Authenticator
	Locator() store.Locator
}

type Committer struct {
	logger        log.Logger
	clock         clockwork.Clock
	authenticator store.Authenticator
	locator       store.Locator
	metrics       *metrics
	attrs         attribute.Set
	config        Config
	rollback      *rollback.Container

	processed *atomic.Int64
	inserted  *atomic.Int64
	failed    *atomic.Int64

	// lock serializes lifecycle operations and appends, an in-flight append completes before Abort
	lock      sync.Mutex
	state     State
	target    store.Target
	failures  []Outcome
	startedAt time.Time
}

func New(d dependencies, cfg Config) *Committer {
	if cfg.MaxReportedFailures <= 0 {
		cfg.MaxReportedFailures = DefaultMaxReportedFailures
	}

	logger := d.Logger().WithComponent("committer")
	return &Committer{
		logger:        logger,
		clock:         d.Clock(),
		authenticator: d.Authenticator(),
		locator:       d.Locator(),
		metrics:       newMetrics(d.Telemetry().Meter()),
		attrs: attribute.NewSet(
			attribute.String("spreadsheet.id", cfg.Ref.SpreadsheetID),
			attribute.Int("sheet.index", cfg.Ref.SheetIndex),
		),
		config:    cfg,
		rollback:  rollback.New(logger),
		processed: atomic.NewInt64(0),
		inserted:  atomic.NewInt64(0),
		failed:    atomic.NewInt64(0),
	}
}

func (c *Committer) State() State {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.state
}

// Rollback returns the container of callbacks invoked on Abort.
func (c *Committer) Rollback() rollback.Builder {
	return c.rollback
}

// Open authenticates and resolves the worksheet. Any error is fatal for the task.
func (c *Committer) Open(ctx context.Context) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.state != StateUnopened {
		return InvalidStateError{Operation: "open", State: c.state}
	}

	tokens, err := c.authenticator.Authenticate(ctx, c.config.Credentials)
	if err != nil {
		return err
	}

	target, err := c.locator.Locate(ctx, tokens, c.config.Ref, c.config.Columns)
	if err != nil {
		return err
	}

	c.target = target
	c.state = StateOpen
	c.startedAt = c.clock.Now()
	c.logger.Infof(ctx, `opened worksheet "%s"`, target.Title())
	return nil
}

// Append the row using exactly one remote call, without retries.
// The returned outcome is Failed on a remote error, the committer stays ready for the next row.
// The call is not interrupted by the context cancellation, an in-flight append is completed.
func (c *Committer) Append(ctx context.Context, r row.Row) Outcome {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.state != StateOpen && c.state != StateAppending {
		return Outcome{RecordIndex: -1, Status: RecordFailed, Err: InvalidStateError{Operation: "append", State: c.state}}
	}
	c.state = StateAppending

	index := c.processed.Inc() - 1
	startTime := c.clock.Now()
	rowID, err := c.target.AppendRow(context.WithoutCancel(ctx), r)
	c.metrics.duration.Record(ctx, float64(c.clock.Since(startTime).Milliseconds()), metric.WithAttributeSet(c.attrs))

	if err != nil {
		return c.fail(ctx, index, err, r)
	}

	c.inserted.Inc()
	c.metrics.inserted.Add(ctx, 1, metric.WithAttributeSet(c.attrs))
	c.logger.Debugf(ctx, `inserted record %d as "%s"`, index, rowID)
	return Outcome{RecordIndex: index, Status: RecordInserted, RowID: rowID}
}

// Reject records a Failed outcome for a record which could not be converted to a row, no remote call is made.
func (c *Committer) Reject(ctx context.Context, err error) Outcome {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.state != StateOpen && c.state != StateAppending {
		return Outcome{RecordIndex: -1, Status: RecordFailed, Err: InvalidStateError{Operation: "reject", State: c.state}}
	}
	c.state = StateAppending

	return c.fail(ctx, c.processed.Inc()-1, err, nil)
}

// Finish closes the worksheet handle and returns the task result.
func (c *Committer) Finish(ctx context.Context) (Result, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.state != StateOpen && c.state != StateAppending {
		return Result{}, InvalidStateError{Operation: "finish", State: c.state}
	}

	c.state = StateFinished
	result := c.result()
	err := c.closeTarget(ctx)

	c.logger.
		WithDuration(result.Duration()).
		Infof(ctx, "finished: %d processed, %d inserted, %d failed", result.Processed, result.Inserted, result.Failed)
	return result, err
}

// Abort stops the task. Appended rows stay in the worksheet, only the rollback callbacks are invoked.
// Abort of an aborted committer does nothing, a finished committer cannot be aborted.
func (c *Committer) Abort(ctx context.Context) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	switch c.state {
	case StateAborted:
		return nil
	case StateFinished:
		return InvalidStateError{Operation: "abort", State: c.state}
	default:
	}

	c.state = StateAborted
	c.rollback.Invoke(ctx)
	err := c.closeTarget(ctx)
	c.logger.Warnf(ctx, "aborted: %d processed, %d inserted, %d failed", c.processed.Load(), c.inserted.Load(), c.failed.Load())
	return err
}

func (c *Committer) fail(ctx context.Context, index int64, err error, r row.Row) Outcome {
	outcome := Outcome{RecordIndex: index, Status: RecordFailed, Err: err}

	c.failed.Inc()
	c.metrics.failed.Add(ctx, 1, metric.WithAttributeSet(c.attrs))
	if len(c.failures) < c.config.MaxReportedFailures {
		c.failures = append(c.failures, outcome)
	}

	logger := c.logger.With(attribute.String("record.index", strconv.FormatInt(index, 10)))
	if r != nil {
		logger.Warnf(ctx, `cannot insert record %d: %s, row: %s`, index, errors.Format(err), summary(r))
	} else {
		logger.Warnf(ctx, `cannot insert record %d: %s`, index, errors.Format(err))
	}
	return outcome
}

func (c *Committer) result() Result {
	failures := make([]Outcome, len(c.failures))
	copy(failures, c.failures)
	return Result{
		Processed:  c.processed.Load(),
		Inserted:   c.inserted.Load(),
		Failed:     c.failed.Load(),
		Failures:   failures,
		StartedAt:  c.startedAt,
		FinishedAt: c.clock.Now(),
	}
}

func (c *Committer) closeTarget(ctx context.Context) error {
	if c.target == nil {
		return nil
	}
	target := c.target
	c.target = nil
	if err := target.Close(ctx); err != nil {
		return errors.Errorf(`cannot close worksheet "%s": %w`, target.Title(), err)
	}
	return nil
}

// summary of the row for diagnostic messages, keys are sorted.
func summary(r row.Row) string {
	out, err := json.EncodeString(r, false)
	if err != nil {
		return "<invalid row>"
	}
	if len(out) > maxRowSummaryLength {
		out = out[:maxRowSummaryLength] + "..."
	}
	return out
}
