// Package config defines the configuration of the sheets writer.
package config

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lestrrat-go/strftime"

	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/mapping/row"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/sink/committer"
	"github.com/keboola/sheets-writer/internal/pkg/utils/errors"
	validatorPkg "github.com/keboola/sheets-writer/internal/pkg/validator"
)

const (
	EnvPrefix          = "SHEETS_WRITER_"
	DefaultDisplayName = "sheets-writer"
)

var spreadsheetURLRegexp = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

// Config of the output.
type Config struct {
	DebugLog            bool          `configKey:"debugLog" configUsage:"Enable debug log level."`
	LogFormat           string        `configKey:"logFormat" configUsage:"Log format: console or json." validate:"oneof=console json"`
	Principal           string        `configKey:"principal" configUsage:"Service account e-mail, optional with a JSON key file." validate:"omitempty,email"`
	PrivateKeyFile      string        `configKey:"privateKeyFile" configUsage:"Path to the private key: PEM, JSON key file or PKCS #12." validate:"required"`
	SpreadsheetID       string        `configKey:"spreadsheetId" configUsage:"Spreadsheet ID or URL." validate:"required"`
	WorksheetTitle      string        `configKey:"worksheetTitle" configUsage:"Title of the worksheet, it has priority over the sheet index."`
	SheetIndex          int           `configKey:"sheetIndex" configUsage:"Zero-based index of the worksheet." validate:"min=0"`
	StartColumn         int           `configKey:"startColumn" configUsage:"One-based number of the first column." validate:"min=1"`
	StartRow            int           `configKey:"startRow" configUsage:"One-based number of the first row." validate:"min=1"`
	DisplayName         string        `configKey:"displayName" configUsage:"Application name sent to the API." validate:"required"`
	DefaultTimeZone     string        `configKey:"defaultTimeZone" configUsage:"Time zone of timestamps: IANA name, UTC or +HH:MM." validate:"required,zone"`
	TimestampFormat     string        `configKey:"timestampFormat" configUsage:"Strftime pattern of timestamps." validate:"required,strftime"`
	NullString          string        `configKey:"nullString" configUsage:"Text of null values."`
	HeaderLine          bool          `configKey:"headerLine" configUsage:"Append column names as the first row."`
	RequestTimeout      time.Duration `configKey:"requestTimeout" configUsage:"Timeout of one API request." validate:"min=1s"`
	MaxReportedFailures int           `configKey:"maxReportedFailures" configUsage:"Max number of failed rows listed in the task result." validate:"min=1"`
}

func NewConfig() Config {
	encoder := row.NewConfig()
	return Config{
		LogFormat:           "console",
		SheetIndex:          0,
		StartColumn:         1,
		StartRow:            1,
		DisplayName:         DefaultDisplayName,
		DefaultTimeZone:     encoder.TimeZone,
		TimestampFormat:     encoder.TimestampFormat,
		NullString:          encoder.NullString,
		RequestTimeout:      60 * time.Second,
		MaxReportedFailures: committer.DefaultMaxReportedFailures,
	}
}

// Normalize trims values, a spreadsheet URL is converted to the ID.
func (c *Config) Normalize() {
	c.Principal = strings.TrimSpace(c.Principal)
	c.PrivateKeyFile = strings.TrimSpace(c.PrivateKeyFile)
	c.WorksheetTitle = strings.TrimSpace(c.WorksheetTitle)
	c.SpreadsheetID = SpreadsheetIDFromURL(strings.TrimSpace(c.SpreadsheetID))
	c.DefaultTimeZone = strings.TrimSpace(c.DefaultTimeZone)
}

func (c Config) Validate() error {
	if err := newValidator().Validate(context.Background(), c); err != nil {
		return errors.PrefixError(err, "invalid configuration")
	}
	return nil
}

// EncoderConfig returns configuration of the row encoder.
func (c Config) EncoderConfig() row.Config {
	return row.Config{
		TimestampFormat: c.TimestampFormat,
		TimeZone:        c.DefaultTimeZone,
		NullString:      c.NullString,
	}
}

// SpreadsheetIDFromURL returns the ID from a spreadsheet URL, other values are returned unchanged.
func SpreadsheetIDFromURL(v string) string {
	u, err := url.Parse(v)
	if err != nil || u.Host == "" {
		return v
	}
	if m := spreadsheetURLRegexp.FindStringSubmatch(u.Path); m != nil {
		return m[1]
	}
	return v
}

func newValidator() *validatorPkg.Validator {
	return validatorPkg.New(
		validatorPkg.Rule{
			Tag: "zone",
			Func: func(_ context.Context, fl validator.FieldLevel) bool {
				_, err := row.ParseTimeZone(fl.Field().String())
				return err == nil
			},
			ErrorMessage: "{0} must be an IANA time zone, UTC or +HH:MM, found \"{1}\"",
		},
		validatorPkg.Rule{
			Tag: "strftime",
			Func: func(_ context.Context, fl validator.FieldLevel) bool {
				_, err := strftime.New(fl.Field().String())
				return err == nil
			},
			ErrorMessage: "{0} is not a valid strftime pattern",
		},
	)
}
