package sheetsapi

import (
	"context"
	"sync"

	"golang.org/x/oauth2"

	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/mapping/row"
	"github.com/keboola/sheets-writer/internal/pkg/utils/errors"
)

type target struct {
	client        *Client
	tokens        oauth2.TokenSource
	spreadsheetID string
	sheetID       int64
	title         string
	columns       []string
	a1Range       string

	lock   sync.Mutex
	closed bool
}

func (t *target) Title() string {
	return t.title
}

// AppendRow appends one row below the last row of the table, values are stored as entered, without parsing.
func (t *target) AppendRow(ctx context.Context, r row.Row) (string, error) {
	t.lock.Lock()
	closed := t.closed
	t.lock.Unlock()
	if closed {
		return "", errors.Errorf(`worksheet "%s" is closed`, t.title)
	}

	token, err := t.tokens.Token()
	if err != nil {
		return "", errors.Errorf("cannot get access token: %w", err)
	}

	values := make([]string, len(t.columns))
	for i, name := range t.columns {
		values[i] = r[name]
	}

	result := &appendResponse{}
	res, err := t.client.http.R().
		SetContext(ctx).
		SetAuthToken(token.AccessToken).
		SetPathParams(map[string]string{
			"spreadsheetId": t.spreadsheetID,
			"range":         t.a1Range,
		}).
		SetQueryParams(map[string]string{
			"valueInputOption": "RAW",
			"insertDataOption": "INSERT_ROWS",
		}).
		SetBody(valueRange{Range: t.a1Range, MajorDimension: "ROWS", Values: [][]string{values}}).
		SetResult(result).
		SetError(&errorBody{}).
		ExpectContentType("application/json").
		Post("spreadsheets/{spreadsheetId}/values/{range}:append")
	if err != nil {
		return "", errors.Errorf(`cannot append row to worksheet "%s": %w`, t.title, err)
	}
	if res.IsError() {
		return "", errors.Errorf(`cannot append row to worksheet "%s": %w`, t.title, requestError(res))
	}

	return result.Updates.UpdatedRange, nil
}

// Close marks the handle closed, the HTTP client is shared and stays open.
func (t *target) Close(_ context.Context) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.closed = true
	return nil
}
