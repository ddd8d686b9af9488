// Package dependencies provides dependencies for the sheets writer components.
//
//   - [ServiceScope] interface provides the logger, telemetry, clock and the remote store collaborators (see [NewServiceScopeFromConfig]).
//   - [Mocked] interface provides dependencies mocked for tests (see [NewMocked]).
//
// Each component defines its own narrow "dependencies" interface, the scope implements all of them.
package dependencies

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/keboola/sheets-writer/internal/pkg/log"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/store"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/store/auth"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/store/sheetsapi"
	"github.com/keboola/sheets-writer/internal/pkg/telemetry"
)

type ServiceScope interface {
	Logger() log.Logger
	Telemetry() telemetry.Telemetry
	Clock() clockwork.Clock
	Authenticator() store.Authenticator
	Locator() store.Locator
}

// HTTPConfig configures the remote API clients.
type HTTPConfig struct {
	UserAgent      string
	RequestTimeout time.Duration
}

// serviceScope dependencies container implements ServiceScope interface.
type serviceScope struct {
	logger        log.Logger
	telemetry     telemetry.Telemetry
	clock         clockwork.Clock
	authenticator store.Authenticator
	locator       store.Locator
}

// NewServiceScopeFromConfig creates the scope with the Google service account authentication and the Sheets API client.
func NewServiceScopeFromConfig(logger log.Logger, tel telemetry.Telemetry, cfg HTTPConfig, opts ...sheetsapi.Option) ServiceScope {
	opts = append([]sheetsapi.Option{
		sheetsapi.WithUserAgent(cfg.UserAgent),
		sheetsapi.WithTimeout(cfg.RequestTimeout),
	}, opts...)

	return newServiceScope(
		logger,
		tel,
		clockwork.NewRealClock(),
		auth.NewServiceAccount(logger),
		sheetsapi.New(logger, opts...),
	)
}

func newServiceScope(logger log.Logger, tel telemetry.Telemetry, clock clockwork.Clock, authenticator store.Authenticator, locator store.Locator) *serviceScope {
	if tel == nil {
		tel = telemetry.NewNop()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &serviceScope{
		logger:        logger,
		telemetry:     tel,
		clock:         clock,
		authenticator: authenticator,
		locator:       locator,
	}
}

func (v *serviceScope) Logger() log.Logger {
	return v.logger
}

func (v *serviceScope) Telemetry() telemetry.Telemetry {
	return v.telemetry
}

func (v *serviceScope) Clock() clockwork.Clock {
	return v.clock
}

func (v *serviceScope) Authenticator() store.Authenticator {
	return v.authenticator
}

func (v *serviceScope) Locator() store.Locator {
	return v.locator
}
