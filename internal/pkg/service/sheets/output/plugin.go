// Package output implements the lifecycle of the output plugin.
//
// The host calls Begin once per transaction, then Open for each task.
// Each TaskWriter receives pages by Write and ends with Finish or Abort.
// Resume is not supported, Cleanup is called after all tasks.
package output

import (
	"context"
	"os"
	"strconv"

	"github.com/gofrs/uuid/v5"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"

	"github.com/keboola/sheets-writer/internal/pkg/ctxattr"
	"github.com/keboola/sheets-writer/internal/pkg/log"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/config"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/definition/schema"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/mapping/row"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/sink/committer"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/store"
	"github.com/keboola/sheets-writer/internal/pkg/telemetry"
	"github.com/keboola/sheets-writer/internal/pkg/utils/errors"
)

var ErrResumeNotSupported = errors.New("resume is not supported")

type dependencies interface {
	Logger() log.Logger
	Telemetry() telemetry.Telemetry
	Clock() clockwork.Clock
	Authenticator() store.Authenticator
	Locator() store.Locator
}

// TaskConfig is shared by all tasks of the transaction.
type TaskConfig struct {
	TransactionID string
	TaskCount     int
	Config        config.Config
	// PrivateKey is loaded once in Begin.
	PrivateKey []byte
}

type Plugin struct {
	d      dependencies
	logger log.Logger
}

func New(d dependencies) *Plugin {
	return &Plugin{d: d, logger: d.Logger().WithComponent("output")}
}

// Begin validates the configuration and the schema, and loads the private key.
// If the header line is enabled, the column names are appended once, before the tasks are opened.
func (p *Plugin) Begin(ctx context.Context, cfg config.Config, s schema.Schema, taskCount int) (TaskConfig, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return TaskConfig{}, err
	}
	if s.Len() == 0 {
		return TaskConfig{}, errors.New("schema has no columns")
	}
	if taskCount < 0 {
		return TaskConfig{}, errors.Errorf("task count must be >= 0, found %d", taskCount)
	}

	// Timestamp pattern and zone are checked before any task is opened
	if _, err := row.NewEncoder(p.logger, cfg.EncoderConfig()); err != nil {
		return TaskConfig{}, err
	}

	key, err := os.ReadFile(cfg.PrivateKeyFile)
	if err != nil {
		return TaskConfig{}, errors.Errorf(`cannot read private key file "%s": %w`, cfg.PrivateKeyFile, err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return TaskConfig{}, errors.Wrap(err, "cannot generate transaction ID")
	}

	tc := TaskConfig{TransactionID: id.String(), TaskCount: taskCount, Config: cfg, PrivateKey: key}
	ctx = ctxattr.ContextWith(ctx, attribute.String("transaction.id", tc.TransactionID))
	worksheet := strconv.Itoa(cfg.SheetIndex)
	if cfg.WorksheetTitle != "" {
		worksheet = strconv.Quote(cfg.WorksheetTitle)
	}
	p.logger.Infof(ctx, `begin: %d task(s), spreadsheet "%s", worksheet %s, columns %q`, taskCount, cfg.SpreadsheetID, worksheet, s.Names())

	if cfg.HeaderLine {
		if err := p.appendHeader(ctx, tc, s); err != nil {
			return TaskConfig{}, err
		}
	}

	return tc, nil
}

// Resume always fails, partially written output cannot be resumed.
func (p *Plugin) Resume(_ context.Context, _ TaskConfig, _ schema.Schema, _ int) error {
	return ErrResumeNotSupported
}

// Cleanup is called after all tasks, there is nothing to clean up, the results are only logged.
func (p *Plugin) Cleanup(ctx context.Context, tc TaskConfig, _ schema.Schema, results []committer.Result) {
	ctx = ctxattr.ContextWith(ctx, attribute.String("transaction.id", tc.TransactionID))
	var inserted, failed int64
	for _, r := range results {
		inserted += r.Inserted
		failed += r.Failed
	}
	p.logger.Infof(ctx, "cleanup: %d task(s), %d inserted, %d failed", len(results), inserted, failed)
}

func (p *Plugin) committerConfig(tc TaskConfig, s schema.Schema) committer.Config {
	cfg := tc.Config
	return committer.Config{
		Credentials: store.Credentials{
			Principal:  cfg.Principal,
			PrivateKey: tc.PrivateKey,
			Scopes:     []string{store.ScopeSpreadsheets},
		},
		Ref: store.Ref{
			SpreadsheetID: cfg.SpreadsheetID,
			SheetTitle:    cfg.WorksheetTitle,
			SheetIndex:    cfg.SheetIndex,
			StartColumn:   cfg.StartColumn,
			StartRow:      cfg.StartRow,
		},
		Columns:             s.Names(),
		MaxReportedFailures: cfg.MaxReportedFailures,
	}
}

func (p *Plugin) appendHeader(ctx context.Context, tc TaskConfig, s schema.Schema) (err error) {
	c := committer.New(p.d, p.committerConfig(tc, s))
	if err := c.Open(ctx); err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = c.Abort(ctx)
		}
	}()

	if outcome := c.Append(ctx, row.Header(s)); outcome.Err != nil {
		return errors.Errorf("cannot append header line: %w", outcome.Err)
	}

	_, err = c.Finish(ctx)
	return err
}
