package row

import (
	"context"
	"strconv"
	"time"

	"github.com/lestrrat-go/strftime"

	"github.com/keboola/sheets-writer/internal/pkg/log"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/definition/schema"
	"github.com/keboola/sheets-writer/internal/pkg/utils/errors"
)

const (
	// DefaultTimestampFormat is "yyyy-MM-dd HH:mm:ss" in the strftime notation.
	DefaultTimestampFormat = "%Y-%m-%d %H:%M:%S"
	DefaultTimeZone        = "UTC"
	DefaultNullString      = ""
)

// ErrSchemaMismatch is returned if the record doesn't match the schema, it is a programming error of the caller.
var ErrSchemaMismatch = errors.New("record doesn't match the schema")

type Config struct {
	TimestampFormat string
	TimeZone        string
	// NullString is written for null values of all types.
	// The spreadsheet has no null, so with the default empty string a null and an empty string are indistinguishable.
	NullString string
}

// Encoder converts records to rows.
// The result depends only on the record, the schema and the configuration.
type Encoder struct {
	logger     log.Logger
	formatter  *strftime.Strftime
	location   *time.Location
	nullString string
}

func NewConfig() Config {
	return Config{
		TimestampFormat: DefaultTimestampFormat,
		TimeZone:        DefaultTimeZone,
		NullString:      DefaultNullString,
	}
}

// NewEncoder validates the timestamp format and the time zone.
// Both are fatal configuration errors, they are detected here, not on the first record.
func NewEncoder(logger log.Logger, cfg Config) (*Encoder, error) {
	errs := errors.NewMultiError()

	formatter, err := strftime.New(cfg.TimestampFormat)
	if err != nil {
		errs.Append(errors.Errorf(`invalid timestamp format "%s": %w`, cfg.TimestampFormat, err))
	}

	location, err := ParseTimeZone(cfg.TimeZone)
	if err != nil {
		errs.Append(err)
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	return &Encoder{
		logger:     logger.WithComponent("row.encoder"),
		formatter:  formatter,
		location:   location,
		nullString: cfg.NullString,
	}, nil
}

// Encode returns a row with one entry per schema column.
// On error no partial row is returned.
func (e *Encoder) Encode(ctx context.Context, rec schema.Record, s schema.Schema) (Row, error) {
	if rec.Len() != s.Len() {
		return nil, errors.Wrapf(ErrSchemaMismatch, "record has %d values, schema has %d columns", rec.Len(), s.Len())
	}

	out := make(Row, s.Len())
	for i := range s.Len() {
		column := s.Column(i)
		value, err := e.encodeValue(rec, i, column.Type)
		if err != nil {
			return nil, errors.Errorf(`cannot encode column "%s": %w`, column.Name, err)
		}
		e.logger.Debugf(ctx, `column "%s" (%s): "%s"`, column.Name, column.Type, log.Sanitize(value))
		out[column.Name] = value
	}

	return out, nil
}

func (e *Encoder) encodeValue(rec schema.Record, i int, typ schema.Type) (string, error) {
	if err := typ.Validate(); err != nil {
		return "", err
	}

	if rec.IsNull(i) {
		return e.nullString, nil
	}

	switch typ {
	case schema.TypeBoolean:
		return strconv.FormatBool(rec.Bool(i)), nil
	case schema.TypeInteger:
		return strconv.FormatInt(rec.Int(i), 10), nil
	case schema.TypeFloat:
		return strconv.FormatFloat(rec.Float(i), 'g', -1, 64), nil
	case schema.TypeString:
		return rec.String(i), nil
	case schema.TypeTimestamp:
		return e.formatter.FormatString(rec.Timestamp(i).In(e.location)), nil
	default:
		panic(errors.Errorf(`column type "%s" is not implemented`, typ))
	}
}
