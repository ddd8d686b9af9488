// Package store defines the remote spreadsheet collaborators: authentication, worksheet lookup and row append.
package store

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/mapping/row"
)

// ScopeSpreadsheets grants read and write access to spreadsheets.
const ScopeSpreadsheets = "https://www.googleapis.com/auth/spreadsheets"

// Credentials of a service account.
type Credentials struct {
	// Principal is the service account e-mail, it may be empty if the key is a JSON key file.
	Principal string
	// PrivateKey is a PEM encoded key, a JSON key file or a PKCS #12 archive.
	PrivateKey []byte
	Scopes     []string
}

// Ref points to a worksheet in a spreadsheet.
// The worksheet is selected by SheetTitle if it is set, otherwise by SheetIndex.
type Ref struct {
	SpreadsheetID string
	// SheetTitle is an exact title of the worksheet.
	SheetTitle string
	// SheetIndex is a zero-based position of the worksheet.
	SheetIndex int
	// StartColumn is a one-based column number where the appended rows start.
	StartColumn int
	// StartRow is a one-based row number of the table start, rows are appended below the existing ones.
	StartRow int
}

// Authenticator returns a token source for the remote API.
// The credentials are verified immediately, an error is fatal.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (oauth2.TokenSource, error)
}

// Locator resolves the worksheet and returns a handle to append rows.
// An error (not found, index out of range, permission denied) is fatal.
type Locator interface {
	Locate(ctx context.Context, tokens oauth2.TokenSource, ref Ref, columns []string) (Target, error)
}

// Target is a handle to one worksheet.
type Target interface {
	// Title of the worksheet.
	Title() string
	// AppendRow inserts one row using exactly one remote call, without retries.
	// The returned ID identifies the inserted row, for example the updated A1 range.
	AppendRow(ctx context.Context, r row.Row) (rowID string, err error)
	// Close releases the handle.
	Close(ctx context.Context) error
}

// RequestError is returned by the remote API on a non-success response.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Message    string
}

func (e RequestError) Error() string {
	msg := fmt.Sprintf(`request "%s %s" failed: %d`, e.Method, e.URL, e.StatusCode)
	if e.Status != "" {
		msg += " " + e.Status
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e RequestError) String() string {
	return e.Error()
}
