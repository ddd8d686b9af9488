// Package page decodes pages of records.
//
// A page is a chunk of JSON lines, each line is an array with one value per schema column:
//
//	[1, "foo", true, 1.5, "2024-01-02T03:04:05Z"]
//	[2, null, false, null, 1704164645]
//
// Timestamp values are ISO 8601 strings or Unix seconds.
package page

import (
	"bufio"
	"bytes"
	"io"

	"github.com/c2h5oh/datasize"

	"github.com/keboola/sheets-writer/internal/pkg/utils/errors"
)

const (
	DefaultMaxRecords    = 1000
	DefaultMaxRecordSize = 16 * datasize.MB
	initialBufferSize    = 64 * datasize.KB
)

// Page is an opaque chunk of encoded records.
type Page []byte

// Scanner splits an input stream into pages of at most maxRecords records.
// The pages are produced lazily, the input is never read as a whole.
type Scanner struct {
	scanner    *bufio.Scanner
	maxRecords int
	page       bytes.Buffer
	err        error
}

type ScannerOption func(c *scannerConfig)

type scannerConfig struct {
	maxRecordSize datasize.ByteSize
}

// WithMaxRecordSize limits the length of one encoded record, a longer line stops the scanner with an error.
func WithMaxRecordSize(v datasize.ByteSize) ScannerOption {
	return func(c *scannerConfig) {
		c.maxRecordSize = v
	}
}

func NewScanner(r io.Reader, maxRecords int, opts ...ScannerOption) *Scanner {
	cfg := scannerConfig{maxRecordSize: DefaultMaxRecordSize}
	for _, o := range opts {
		o(&cfg)
	}
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}

	bufferSize := min(initialBufferSize, cfg.maxRecordSize)
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, bufferSize.Bytes()), int(cfg.maxRecordSize.Bytes())) // nolint:gosec
	return &Scanner{scanner: s, maxRecords: maxRecords}
}

// Next reads the next page, it returns false at the end of the input or on an error.
func (s *Scanner) Next() bool {
	s.page.Reset()
	records := 0
	for records < s.maxRecords && s.scanner.Scan() {
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		s.page.Write(line)
		s.page.WriteByte('\n')
		records++
	}
	if err := s.scanner.Err(); err != nil {
		s.err = errors.PrefixError(err, "cannot read page")
		return false
	}
	return records > 0
}

// Page returns the current page, it is valid until the next call of the Next method.
func (s *Scanner) Page() Page {
	return s.page.Bytes()
}

func (s *Scanner) Err() error {
	return s.err
}
