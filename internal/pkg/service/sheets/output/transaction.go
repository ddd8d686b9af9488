package output

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/config"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/definition/schema"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/mapping/page"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/sink/committer"
	"github.com/keboola/sheets-writer/internal/pkg/utils/errors"
)

// Source provides pages of one task, for example page.Scanner.
type Source interface {
	Next() bool
	Page() page.Page
	Err() error
}

type TransactionResult struct {
	TransactionID string
	Tasks         []committer.Result
}

// Transaction runs all lifecycle steps, one task per source, tasks run in parallel.
// If a task fails, the other tasks are cancelled and aborted.
func (p *Plugin) Transaction(ctx context.Context, cfg config.Config, s schema.Schema, sources []Source) (TransactionResult, error) {
	tc, err := p.Begin(ctx, cfg, s, len(sources))
	if err != nil {
		return TransactionResult{}, err
	}

	results := make([]committer.Result, len(sources))
	grp, grpCtx := errgroup.WithContext(ctx)
	for i, src := range sources {
		grp.Go(func() error {
			result, err := p.runTask(grpCtx, tc, s, i, src)
			if err != nil {
				return errors.PrefixErrorf(err, "task %d failed", i)
			}
			results[i] = result
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return TransactionResult{TransactionID: tc.TransactionID}, err
	}

	p.Cleanup(ctx, tc, s, results)
	return TransactionResult{TransactionID: tc.TransactionID, Tasks: results}, nil
}

func (p *Plugin) runTask(ctx context.Context, tc TaskConfig, s schema.Schema, taskIndex int, src Source) (result committer.Result, err error) {
	w, err := p.Open(ctx, tc, s, taskIndex)
	if err != nil {
		return result, err
	}

	defer func() {
		if err != nil {
			w.Abort(ctx)
		}
	}()

	for src.Next() {
		if err := w.Write(ctx, src.Page()); err != nil {
			return result, err
		}
	}
	if err := src.Err(); err != nil {
		return result, err
	}

	return w.Finish(ctx)
}

func (r TransactionResult) Inserted() (n int64) {
	for _, t := range r.Tasks {
		n += t.Inserted
	}
	return n
}

func (r TransactionResult) Failed() (n int64) {
	for _, t := range r.Tasks {
		n += t.Failed
	}
	return n
}
