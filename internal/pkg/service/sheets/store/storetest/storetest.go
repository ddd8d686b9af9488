// Package storetest provides an in-memory implementation of the store interfaces for tests.
package storetest

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"

	"golang.org/x/oauth2"

	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/mapping/row"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/store"
	"github.com/keboola/sheets-writer/internal/pkg/utils/errors"
)

// Store records appended rows in memory, errors can be injected by fields.
type Store struct {
	AuthError   error
	LocateError error
	// AppendError, if set, is called before each append, a returned error fails the append.
	AppendError func(r row.Row) error
	// Sheets are worksheet titles, Locate fails if the index is out of range.
	Sheets []string

	lock        sync.Mutex
	rows        []row.Row
	authCalls   int
	locateCalls int
	appendCalls int
	closeCalls  int
	lastRef     store.Ref
	lastCreds   store.Credentials
}

type target struct {
	store   *Store
	title   string
	columns []string
	closed  bool
}

func New() *Store {
	return &Store{Sheets: []string{"Sheet1"}}
}

// FailOn returns AppendError callback which fails rows with the column value.
func FailOn(column, value string) func(r row.Row) error {
	return func(r row.Row) error {
		if r[column] == value {
			return errors.Errorf(`simulated transport error for %s="%s"`, column, value)
		}
		return nil
	}
}

func (s *Store) Authenticate(_ context.Context, creds store.Credentials) (oauth2.TokenSource, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.authCalls++
	s.lastCreds = creds
	if s.AuthError != nil {
		return nil, s.AuthError
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"}), nil
}

func (s *Store) Locate(_ context.Context, _ oauth2.TokenSource, ref store.Ref, columns []string) (store.Target, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.locateCalls++
	s.lastRef = ref
	if s.LocateError != nil {
		return nil, s.LocateError
	}
	if ref.SheetTitle != "" {
		for _, title := range s.Sheets {
			if title == ref.SheetTitle {
				return &target{store: s, title: title, columns: columns}, nil
			}
		}
		return nil, errors.Errorf(`worksheet "%s" not found in spreadsheet "%s"`, ref.SheetTitle, ref.SpreadsheetID)
	}
	if ref.SheetIndex < 0 || ref.SheetIndex >= len(s.Sheets) {
		return nil, errors.Errorf(`worksheet index %d is out of range, spreadsheet "%s" has %d worksheet(s)`, ref.SheetIndex, ref.SpreadsheetID, len(s.Sheets))
	}
	return &target{store: s, title: s.Sheets[ref.SheetIndex], columns: columns}, nil
}

// Rows returns copies of all successfully appended rows.
func (s *Store) Rows() []row.Row {
	s.lock.Lock()
	defer s.lock.Unlock()
	out := make([]row.Row, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, maps.Clone(r))
	}
	return out
}

// RemoteCalls returns number of all calls, including failed ones.
func (s *Store) RemoteCalls() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.authCalls + s.locateCalls + s.appendCalls
}

func (s *Store) AppendCalls() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.appendCalls
}

func (s *Store) CloseCalls() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.closeCalls
}

func (s *Store) LastRef() store.Ref {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.lastRef
}

func (s *Store) LastCredentials() store.Credentials {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.lastCreds
}

// Dump returns rows as lines of values separated by a comma, in the column order.
func (s *Store) Dump(columns []string) string {
	var out strings.Builder
	for _, r := range s.Rows() {
		values := make([]string, len(columns))
		for i, name := range columns {
			values[i] = r[name]
		}
		out.WriteString(strings.Join(values, ","))
		out.WriteString("\n")
	}
	return out.String()
}

func (t *target) Title() string {
	return t.title
}

func (t *target) AppendRow(ctx context.Context, r row.Row) (string, error) {
	s := t.store
	s.lock.Lock()
	defer s.lock.Unlock()

	if t.closed {
		return "", errors.Errorf(`worksheet "%s" is closed`, t.title)
	}

	s.appendCalls++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.AppendError != nil {
		if err := s.AppendError(r); err != nil {
			return "", err
		}
	}

	s.rows = append(s.rows, maps.Clone(r))
	return fmt.Sprintf("'%s'!A%d", t.title, len(s.rows)), nil
}

func (t *target) Close(_ context.Context) error {
	t.store.lock.Lock()
	defer t.store.lock.Unlock()
	t.closed = true
	t.store.closeCalls++
	return nil
}
