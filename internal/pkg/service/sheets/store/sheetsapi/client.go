// Package sheetsapi implements the store interfaces using the Google Sheets API v4.
package sheetsapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"

	"github.com/keboola/sheets-writer/internal/pkg/log"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/store"
	"github.com/keboola/sheets-writer/internal/pkg/utils/errors"
)

const (
	DefaultBaseURL   = "https://sheets.googleapis.com/v4/"
	DefaultUserAgent = "sheets-writer"
	RequestTimeout   = 60 * time.Second
	DialTimeout      = 30 * time.Second
	IdleConnTimeout  = 90 * time.Second
	KeepAlive        = 30 * time.Second
	MaxIdleConns     = 32
)

// Client is a thin REST client of the Sheets API.
// Requests are never retried, a failed append is reported to the caller.
type Client struct {
	logger log.Logger
	http   *resty.Client
}

type config struct {
	baseURL    string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
}

type Option func(c *config)

func WithBaseURL(v string) Option {
	return func(c *config) {
		c.baseURL = v
	}
}

// WithUserAgent sets the application name sent to the API.
func WithUserAgent(v string) Option {
	return func(c *config) {
		if v != "" {
			c.userAgent = v
		}
	}
}

func WithTimeout(v time.Duration) Option {
	return func(c *config) {
		if v > 0 {
			c.timeout = v
		}
	}
}

func WithHTTPClient(v *http.Client) Option {
	return func(c *config) {
		c.httpClient = v
	}
}

func New(logger log.Logger, opts ...Option) *Client {
	cfg := config{baseURL: DefaultBaseURL, userAgent: DefaultUserAgent, timeout: RequestTimeout}
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{Transport: createTransport()}
	}

	c := &Client{logger: logger.WithComponent("sheets.api")}
	c.http = resty.NewWithClient(cfg.httpClient)
	c.http.SetBaseURL(cfg.baseURL)
	c.http.SetHeader("User-Agent", cfg.userAgent)
	c.http.SetTimeout(cfg.timeout)
	c.http.SetRetryCount(0)
	c.http.SetLogger(log.NewLevelWriter(context.Background(), c.logger, log.DebugLevel))
	c.setupLogs()
	return c
}

// Locate loads worksheets of the spreadsheet and returns the worksheet with the title, or at the index if the title is not set.
func (c *Client) Locate(ctx context.Context, tokens oauth2.TokenSource, ref store.Ref, columns []string) (store.Target, error) {
	if ref.SpreadsheetID == "" {
		return nil, errors.New("spreadsheet ID is not set")
	}
	if ref.SheetIndex < 0 {
		return nil, errors.Errorf("worksheet index must be >= 0, found %d", ref.SheetIndex)
	}
	startColumn := ref.StartColumn
	if startColumn == 0 {
		startColumn = 1
	}
	if startColumn < 0 {
		return nil, errors.Errorf("start column must be >= 1, found %d", ref.StartColumn)
	}
	startRow := ref.StartRow
	if startRow == 0 {
		startRow = 1
	}
	if startRow < 0 {
		return nil, errors.Errorf("start row must be >= 1, found %d", ref.StartRow)
	}

	token, err := tokens.Token()
	if err != nil {
		return nil, errors.Errorf("cannot get access token: %w", err)
	}

	result := &spreadsheet{}
	res, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token.AccessToken).
		SetPathParam("spreadsheetId", ref.SpreadsheetID).
		SetQueryParam("fields", "spreadsheetId,sheets.properties(sheetId,title,index)").
		SetResult(result).
		SetError(&errorBody{}).
		ExpectContentType("application/json").
		Get("spreadsheets/{spreadsheetId}")
	if err != nil {
		return nil, errors.Errorf(`cannot load spreadsheet "%s": %w`, ref.SpreadsheetID, err)
	}
	if res.IsError() {
		return nil, errors.Errorf(`cannot load spreadsheet "%s": %w`, ref.SpreadsheetID, requestError(res))
	}

	props, err := result.find(ref)
	if err != nil {
		return nil, err
	}

	c.logger.Infof(ctx, `located worksheet "%s" (index %d) in spreadsheet "%s"`, props.Title, props.Index, ref.SpreadsheetID)

	return &target{
		client:        c,
		tokens:        tokens,
		spreadsheetID: ref.SpreadsheetID,
		sheetID:       props.SheetID,
		title:         props.Title,
		columns:       columns,
		a1Range:       AppendRange(props.Title, startColumn, startRow, len(columns)),
	}, nil
}

func (c *Client) setupLogs() {
	c.http.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		if res.IsSuccess() {
			c.logger.Debug(res.Request.Context(), responseToLog(res))
		} else {
			c.logger.Warn(res.Request.Context(), responseToLog(res))
		}
		return nil
	})
	c.http.OnError(func(req *resty.Request, err error) {
		var resErr *resty.ResponseError
		if errors.As(err, &resErr) {
			return
		}
		c.logger.Warn(req.Context(), requestToLog(req, err))
	})
}

func createTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   DialTimeout,
		KeepAlive: KeepAlive,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          MaxIdleConns,
		IdleConnTimeout:       IdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConnsPerHost:   MaxIdleConns,
	}
}

func requestToLog(req *resty.Request, err error) string {
	return fmt.Sprintf("HTTP %s %s | %s", req.Method, req.URL, err)
}

func responseToLog(res *resty.Response) string {
	req := res.Request
	return fmt.Sprintf("HTTP %s %s | %d | %s", req.Method, req.URL, res.StatusCode(), res.Time())
}
