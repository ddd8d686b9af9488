// Package cli provides the command line interface of the sheets writer.
//
// Each input file is one task, the file contains records as JSON lines.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/c2h5oh/datasize"
	"github.com/spf13/cobra"

	"github.com/keboola/sheets-writer/internal/pkg/log"
	"github.com/keboola/sheets-writer/internal/pkg/service/common/configmap"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/config"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/definition/schema"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/dependencies"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/mapping/page"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/output"
	"github.com/keboola/sheets-writer/internal/pkg/telemetry"
	"github.com/keboola/sheets-writer/internal/pkg/utils/errors"
)

const (
	configFileFlag = "config-file"
	columnsFlag    = "columns"
	pageSizeFlag   = "page-size"
	recordSizeFlag = "max-record-size"
)

// ScopeFactory creates dependencies from the loaded configuration.
type ScopeFactory func(logger log.Logger, cfg config.Config) dependencies.ServiceScope

type Options struct {
	Stdout   io.Writer
	Stderr   io.Writer
	Envs     configmap.EnvLookup
	NewScope ScopeFactory
}

// DefaultScope creates dependencies with the Google Sheets API client.
func DefaultScope(logger log.Logger, cfg config.Config) dependencies.ServiceScope {
	return dependencies.NewServiceScopeFromConfig(logger, telemetry.NewNop(), dependencies.HTTPConfig{
		UserAgent:      cfg.DisplayName,
		RequestTimeout: cfg.RequestTimeout,
	})
}

func NewRootCommand(opts Options) *cobra.Command {
	root := &cobra.Command{
		Use:           "sheets-writer",
		Short:         "Write records to a Google Spreadsheet.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)
	root.AddCommand(RunCommand(opts))
	return root
}

func RunCommand(opts Options) *cobra.Command {
	if opts.Envs == nil {
		opts.Envs = os.LookupEnv
	}
	if opts.NewScope == nil {
		opts.NewScope = DefaultScope
	}

	cmd := &cobra.Command{
		Use:   "run [flags] <page file> [<page file> ...]",
		Short: "Append records from the page files, one task per file.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
	}

	fs := cmd.Flags()
	config.Flags(fs)
	fs.String(configFileFlag, "", "Path to a JSON or YAML config file.")
	fs.StringSlice(columnsFlag, nil, `Schema columns, for example "id:integer,name:string".`)
	fs.Int(pageSizeFlag, page.DefaultMaxRecords, "Max number of records in one page.")
	fs.String(recordSizeFlag, page.DefaultMaxRecordSize.String(), "Max size of one encoded record, for example 512KB.")
	return cmd
}

func run(cmd *cobra.Command, args []string, opts Options) error {
	fs := cmd.Flags()
	configFile, _ := fs.GetString(configFileFlag)
	columns, _ := fs.GetStringSlice(columnsFlag)
	pageSize, _ := fs.GetInt(pageSizeFlag)
	recordSizeStr, _ := fs.GetString(recordSizeFlag)

	cfg, err := config.Load(fs, opts.Envs, configFile)
	if err != nil {
		return err
	}

	if len(columns) == 0 {
		return errors.Errorf(`flag "--%s" is not set`, columnsFlag)
	}
	s, err := schema.ParseColumns(columns)
	if err != nil {
		return err
	}

	var recordSize datasize.ByteSize
	if err := recordSize.UnmarshalText([]byte(recordSizeStr)); err != nil || recordSize == 0 {
		return errors.Errorf(`flag "--%s": invalid size "%s"`, recordSizeFlag, recordSizeStr)
	}

	format, err := log.ParseFormat(cfg.LogFormat)
	if err != nil {
		return err
	}
	logger := log.NewServiceLogger(cmd.ErrOrStderr(), format, cfg.DebugLog)

	// Open the page files
	var files []*os.File
	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()
	sources := make([]output.Source, 0, len(args))
	for _, path := range args {
		f, err := os.Open(path) // nolint:gosec
		if err != nil {
			return errors.Errorf(`cannot open page file "%s": %w`, path, err)
		}
		files = append(files, f)
		sources = append(sources, page.NewScanner(f, pageSize, page.WithMaxRecordSize(recordSize)))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := output.New(opts.NewScope(logger, cfg)).Transaction(ctx, cfg, s, sources)
	if err != nil {
		return err
	}

	return printResult(cmd.OutOrStdout(), result)
}

func printResult(w io.Writer, result output.TransactionResult) error {
	if _, err := fmt.Fprintf(w, "Transaction %s: %d inserted, %d failed.\n", result.TransactionID, result.Inserted(), result.Failed()); err != nil {
		return err
	}
	for i, task := range result.Tasks {
		for _, f := range task.Failures {
			if _, err := fmt.Fprintf(w, "  task %d, record %d: %s\n", i, f.RecordIndex, f.Err); err != nil {
				return err
			}
		}
		if task.FailuresTruncated() {
			if _, err := fmt.Fprintf(w, "  task %d: %d more failure(s) not listed\n", i, task.Failed-int64(len(task.Failures))); err != nil {
				return err
			}
		}
	}
	return nil
}
