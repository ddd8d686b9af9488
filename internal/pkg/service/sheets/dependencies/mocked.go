package dependencies

import (
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/jonboulle/clockwork"

	"github.com/keboola/sheets-writer/internal/pkg/log"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/store/auth"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/store/sheetsapi"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/store/storetest"
	"github.com/keboola/sheets-writer/internal/pkg/telemetry"
)

// Mocked dependencies for tests.
//
// By default, the remote store is the in-memory [storetest.Store].
// With [WithHTTPStore], the real clients are used with the mocked HTTP transport.
type Mocked interface {
	ServiceScope
	DebugLogger() log.DebugLogger
	TestTelemetry() telemetry.ForTest
	TestClock() *clockwork.FakeClock
	TestStore() *storetest.Store
	MockedHTTPTransport() *httpmock.MockTransport
}

type MockedConfig struct {
	clock       *clockwork.FakeClock
	debugLogger log.DebugLogger
	telemetry   telemetry.ForTest
	store       *storetest.Store
	httpStore   bool
}

type MockedOption func(c *MockedConfig)

// mocked dependencies container implements Mocked interface.
type mocked struct {
	*serviceScope
	config    MockedConfig
	transport *httpmock.MockTransport
}

func WithClock(v *clockwork.FakeClock) MockedOption {
	return func(c *MockedConfig) {
		c.clock = v
	}
}

func WithDebugLogger(v log.DebugLogger) MockedOption {
	return func(c *MockedConfig) {
		c.debugLogger = v
	}
}

func WithTelemetry(v telemetry.ForTest) MockedOption {
	return func(c *MockedConfig) {
		c.telemetry = v
	}
}

func WithStore(v *storetest.Store) MockedOption {
	return func(c *MockedConfig) {
		c.store = v
	}
}

// WithHTTPStore uses the service account authentication and the Sheets API client, both on the mocked HTTP transport.
func WithHTTPStore() MockedOption {
	return func(c *MockedConfig) {
		c.httpStore = true
	}
}

func NewMocked(t *testing.T, opts ...MockedOption) Mocked {
	t.Helper()

	cfg := MockedConfig{}
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.clock == nil {
		cfg.clock = clockwork.NewFakeClockAt(time.Date(2010, 1, 1, 1, 0, 0, 0, time.UTC))
	}
	if cfg.debugLogger == nil {
		cfg.debugLogger = log.NewDebugLogger()
	}
	if cfg.telemetry == nil {
		cfg.telemetry = telemetry.NewForTest(t)
	}
	if cfg.store == nil {
		cfg.store = storetest.New()
	}

	d := &mocked{config: cfg, transport: httpmock.NewMockTransport()}
	if cfg.httpStore {
		httpClient := &http.Client{Transport: d.transport}
		d.serviceScope = newServiceScope(
			cfg.debugLogger,
			cfg.telemetry,
			cfg.clock,
			auth.NewServiceAccount(cfg.debugLogger, auth.WithHTTPClient(httpClient)),
			sheetsapi.New(cfg.debugLogger, sheetsapi.WithHTTPClient(httpClient)),
		)
	} else {
		d.serviceScope = newServiceScope(cfg.debugLogger, cfg.telemetry, cfg.clock, cfg.store, cfg.store)
	}

	return d
}

func (v *mocked) DebugLogger() log.DebugLogger {
	return v.config.debugLogger
}

func (v *mocked) TestTelemetry() telemetry.ForTest {
	return v.config.telemetry
}

func (v *mocked) TestClock() *clockwork.FakeClock {
	return v.config.clock
}

func (v *mocked) TestStore() *storetest.Store {
	return v.config.store
}

func (v *mocked) MockedHTTPTransport() *httpmock.MockTransport {
	return v.transport
}
