package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/keboola/go-utils/pkg/wildcards"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keboola/sheets-writer/internal/pkg/log"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/cli"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/config"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/dependencies"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/store/storetest"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.TrimLeft(content, "\n")), 0o600))
	return path
}

func TestRunCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	keyFile := writeFile(t, dir, "key.pem", "key")
	page1 := writeFile(t, dir, "page1.jsonl", `
[1, "foo"]
[2, null]
`)
	page2 := writeFile(t, dir, "page2.jsonl", `
[3, "bar"]
`)

	d := dependencies.NewMocked(t)
	d.TestStore().AppendError = storetest.FailOn("id", "3")

	var cfg config.Config
	envs := map[string]string{"SHEETS_WRITER_NULL_STRING": "NULL"}
	stdout := &bytes.Buffer{}
	root := cli.NewRootCommand(cli.Options{
		Stdout: stdout,
		Stderr: &bytes.Buffer{},
		Envs: func(key string) (string, bool) {
			v, ok := envs[key]
			return v, ok
		},
		NewScope: func(_ log.Logger, c config.Config) dependencies.ServiceScope {
			cfg = c
			return d
		},
	})
	root.SetArgs([]string{
		"run",
		"--private-key-file", keyFile,
		"--principal", "writer@my-project.iam.gserviceaccount.com",
		"--spreadsheet-id", "https://docs.google.com/spreadsheets/d/my-spreadsheet/edit",
		"--sheet-index", "1",
		"--columns", "id:integer,name:string",
		page1, page2,
	})
	d.TestStore().Sheets = []string{"Sheet1", "Sheet2"}

	require.NoError(t, root.ExecuteContext(t.Context()))

	// Configuration
	assert.Equal(t, "my-spreadsheet", cfg.SpreadsheetID)
	assert.Equal(t, 1, cfg.SheetIndex)
	assert.Equal(t, "NULL", cfg.NullString)
	assert.Equal(t, 1, d.TestStore().LastRef().SheetIndex)

	// Rows from both tasks
	lines := strings.Split(strings.TrimSpace(d.TestStore().Dump([]string{"id", "name"})), "\n")
	sort.Strings(lines)
	assert.Equal(t, []string{"1,foo", "2,NULL"}, lines)

	// Summary
	expected := `
Transaction %s: 2 inserted, 1 failed.
  task 1, record 0: simulated transport error for id="3"
`
	wildcards.Assert(t, strings.TrimSpace(expected), strings.TrimSpace(stdout.String()))
}

func TestRunCommand_MissingColumns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	keyFile := writeFile(t, dir, "key.pem", "key")
	page1 := writeFile(t, dir, "page1.jsonl", "[1]\n")

	d := dependencies.NewMocked(t)
	root := cli.NewRootCommand(cli.Options{
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
		Envs: func(string) (string, bool) {
			return "", false
		},
		NewScope: func(log.Logger, config.Config) dependencies.ServiceScope {
			return d
		},
	})
	root.SetArgs([]string{"run", "--private-key-file", keyFile, "--spreadsheet-id", "abc", page1})

	err := root.ExecuteContext(t.Context())
	require.Error(t, err)
	assert.Equal(t, `flag "--columns" is not set`, err.Error())
	assert.Equal(t, 0, d.TestStore().RemoteCalls())
}

func TestRunCommand_InvalidConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	page1 := writeFile(t, dir, "page1.jsonl", "[1]\n")
	configFile := writeFile(t, dir, "config.yaml", `
spreadsheetId: abc
defaultTimeZone: Mars/Olympus
`)

	root := cli.NewRootCommand(cli.Options{
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
		Envs: func(string) (string, bool) {
			return "", false
		},
	})
	root.SetArgs([]string{"run", "--config-file", configFile, "--columns", "id:integer", page1})

	err := root.ExecuteContext(t.Context())
	require.Error(t, err)
	expected := `
invalid configuration:
- "privateKeyFile" is a required field
- "defaultTimeZone" must be an IANA time zone, UTC or +HH:MM, found "Mars/Olympus"
`
	assert.Equal(t, strings.TrimSpace(expected), err.Error())
}

func TestRunCommand_InvalidRecordSize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	keyFile := writeFile(t, dir, "key.pem", "key")
	page1 := writeFile(t, dir, "page1.jsonl", "[1]\n")

	root := cli.NewRootCommand(cli.Options{
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
		Envs: func(string) (string, bool) {
			return "", false
		},
	})
	root.SetArgs([]string{"run", "--private-key-file", keyFile, "--spreadsheet-id", "abc", "--columns", "id:integer", "--max-record-size", "foo", page1})

	err := root.ExecuteContext(t.Context())
	require.Error(t, err)
	assert.Equal(t, `flag "--max-record-size": invalid size "foo"`, err.Error())
}

func TestRunCommand_MissingPageFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	keyFile := writeFile(t, dir, "key.pem", "key")
	missing := filepath.Join(dir, "missing.jsonl")

	d := dependencies.NewMocked(t)
	root := cli.NewRootCommand(cli.Options{
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
		Envs: func(string) (string, bool) {
			return "", false
		},
		NewScope: func(log.Logger, config.Config) dependencies.ServiceScope {
			return d
		},
	})
	root.SetArgs([]string{"run", "--private-key-file", keyFile, "--spreadsheet-id", "abc", "--columns", "id:integer", missing})

	err := root.ExecuteContext(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `cannot open page file "`+missing+`"`)
	assert.Equal(t, 0, d.TestStore().RemoteCalls())
}
