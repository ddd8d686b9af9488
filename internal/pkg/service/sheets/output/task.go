package output

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/keboola/sheets-writer/internal/pkg/ctxattr"
	"github.com/keboola/sheets-writer/internal/pkg/log"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/definition/schema"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/mapping/page"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/mapping/row"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/sink/committer"
	"github.com/keboola/sheets-writer/internal/pkg/telemetry"
	"github.com/keboola/sheets-writer/internal/pkg/utils/errors"
)

// TaskWriter writes pages of one task, records are processed sequentially.
type TaskWriter struct {
	logger    log.Logger
	schema    schema.Schema
	reader    *page.Reader
	encoder   *row.Encoder
	committer *committer.Committer
	attrs     []attribute.KeyValue
	span      telemetry.Span
}

// Open the task. Authentication and the worksheet resolution errors are fatal.
func (p *Plugin) Open(ctx context.Context, tc TaskConfig, s schema.Schema, taskIndex int) (w *TaskWriter, err error) {
	if taskIndex < 0 || taskIndex >= tc.TaskCount {
		return nil, errors.Errorf("task index %d is out of range, task count is %d", taskIndex, tc.TaskCount)
	}

	ctx = ctxattr.ContextWith(
		ctx,
		attribute.String("transaction.id", tc.TransactionID),
		attribute.Int("task.index", taskIndex),
	)

	ctx, span := p.d.Telemetry().Tracer().Start(ctx, "sheets.task", trace.WithAttributes(
		attribute.String("spreadsheet.id", tc.Config.SpreadsheetID),
		attribute.Int("sheet.index", tc.Config.SheetIndex),
	))
	defer func() {
		if err != nil {
			span.End(&err)
		}
	}()

	logger := p.logger.WithComponent("task")
	encoder, err := row.NewEncoder(logger, tc.Config.EncoderConfig())
	if err != nil {
		return nil, err
	}

	c := committer.New(p.d, p.committerConfig(tc, s))
	if err := c.Open(ctx); err != nil {
		return nil, err
	}

	logger.Infof(ctx, "task %d opened", taskIndex)
	return &TaskWriter{
		logger:    logger,
		schema:    s,
		reader:    page.NewReader(s),
		encoder:   encoder,
		committer: c,
		attrs:     ctxattr.Attributes(ctx).ToSlice(),
		span:      span,
	}, nil
}

// Write all records of the page. A failed record is counted and the processing continues.
// The context is checked between records, an in-flight append is completed.
// An error is returned if the page cannot be decoded or the context is cancelled.
func (w *TaskWriter) Write(ctx context.Context, p page.Page) error {
	ctx = w.withAttrs(ctx)
	if state := w.committer.State(); state != committer.StateOpen && state != committer.StateAppending {
		return committer.InvalidStateError{Operation: "write", State: state}
	}

	w.reader.SetPage(p)
	for w.reader.Next() {
		if err := ctx.Err(); err != nil {
			return errors.Errorf("write interrupted: %w", context.Cause(ctx))
		}

		r, err := w.encoder.Encode(ctx, w.reader.Record(), w.schema)
		if err != nil {
			w.committer.Reject(ctx, err)
			continue
		}

		if outcome := w.committer.Append(ctx, r); errors.Is(outcome.Err, committer.ErrInvalidState) {
			return outcome.Err
		}
	}

	return w.reader.Err()
}

// Finish the task, the result lists failed records.
func (w *TaskWriter) Finish(ctx context.Context) (result committer.Result, err error) {
	ctx = w.withAttrs(ctx)
	result, err = w.committer.Finish(ctx)
	if errors.Is(err, committer.ErrInvalidState) {
		return result, err
	}

	w.span.SetAttributes(
		attribute.Int64("rows.processed", result.Processed),
		attribute.Int64("rows.inserted", result.Inserted),
		attribute.Int64("rows.failed", result.Failed),
	)
	w.span.End(&err)
	return result, err
}

// Abort the task, appended rows stay in the worksheet.
func (w *TaskWriter) Abort(ctx context.Context) {
	// Repeated abort is a no-op, the span has been ended already
	if w.committer.State() == committer.StateAborted {
		return
	}

	ctx = w.withAttrs(ctx)
	err := w.committer.Abort(ctx)
	if errors.Is(err, committer.ErrInvalidState) {
		w.logger.Warn(ctx, err.Error())
		return
	}

	abortErr := errors.New("task aborted")
	if err != nil {
		abortErr = errors.PrefixError(err, "task aborted")
		w.logger.Warn(ctx, errors.Format(abortErr))
	}
	w.span.End(&abortErr)
}

// withAttrs adds the task attributes to the context provided by the host.
func (w *TaskWriter) withAttrs(ctx context.Context) context.Context {
	return ctxattr.ContextWith(ctx, w.attrs...)
}
