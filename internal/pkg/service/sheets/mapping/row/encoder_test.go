package row_test

import (
	"context"
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keboola/sheets-writer/internal/pkg/log"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/definition/schema"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/mapping/row"
)

func allTypesSchema() schema.Schema {
	var columns []schema.Column
	for _, typ := range schema.AllTypes() {
		columns = append(columns, schema.Column{Name: "col_" + typ.String(), Type: typ})
	}
	return schema.MustNew(columns...)
}

func sampleValue(typ schema.Type) any {
	switch typ {
	case schema.TypeBoolean:
		return true
	case schema.TypeInteger:
		return int64(123)
	case schema.TypeFloat:
		return 1.25
	case schema.TypeString:
		return "foo"
	case schema.TypeTimestamp:
		return time.Unix(0, 0)
	default:
		return nil
	}
}

func newEncoder(t *testing.T, modify func(cfg *row.Config)) *row.Encoder {
	t.Helper()
	cfg := row.NewConfig()
	if modify != nil {
		modify(&cfg)
	}
	e, err := row.NewEncoder(log.NewNopLogger(), cfg)
	require.NoError(t, err)
	return e
}

func TestEncoder_AllTypes(t *testing.T) {
	t.Parallel()

	s := allTypesSchema()
	values := schema.Values{}
	for _, typ := range schema.AllTypes() {
		v := sampleValue(typ)
		require.NotNil(t, v, `missing sample value for type "%s"`, typ)
		values = append(values, v)
	}

	out, err := newEncoder(t, nil).Encode(context.Background(), values, s)
	require.NoError(t, err)
	assert.Equal(t, row.Row{
		"col_boolean":   "true",
		"col_integer":   "123",
		"col_float":     "1.25",
		"col_string":    "foo",
		"col_timestamp": "1970-01-01 00:00:00",
	}, out)
}

func TestEncoder_KeysMatchSchema(t *testing.T) {
	t.Parallel()

	s := allTypesSchema()
	e := newEncoder(t, nil)
	for _, values := range []schema.Values{
		{true, int64(1), 1.0, "a", time.Now()},
		{nil, nil, nil, nil, nil},
		{false, nil, 0.0, nil, time.Now()},
	} {
		out, err := e.Encode(context.Background(), values, s)
		require.NoError(t, err)
		assert.Len(t, out, s.Len())
		for _, name := range s.Names() {
			assert.Contains(t, out, name)
		}
	}
}

func TestEncoder_Null(t *testing.T) {
	t.Parallel()

	s := allTypesSchema()
	out, err := newEncoder(t, nil).Encode(context.Background(), schema.Values{nil, nil, nil, nil, nil}, s)
	require.NoError(t, err)
	for name, value := range out {
		assert.Empty(t, value, name)
	}

	// Null and empty string are indistinguishable in the output
	s = schema.MustNew(schema.Column{Name: "a", Type: schema.TypeString}, schema.Column{Name: "b", Type: schema.TypeString})
	out, err = newEncoder(t, nil).Encode(context.Background(), schema.Values{nil, ""}, s)
	require.NoError(t, err)
	assert.Equal(t, out["a"], out["b"])
}

func TestEncoder_NullString(t *testing.T) {
	t.Parallel()

	s := allTypesSchema()
	e := newEncoder(t, func(cfg *row.Config) { cfg.NullString = "NULL" })
	out, err := e.Encode(context.Background(), schema.Values{nil, nil, nil, "", nil}, s)
	require.NoError(t, err)
	assert.Equal(t, row.Row{
		"col_boolean":   "NULL",
		"col_integer":   "NULL",
		"col_float":     "NULL",
		"col_string":    "",
		"col_timestamp": "NULL",
	}, out)
}

func TestEncoder_Boolean_Deterministic(t *testing.T) {
	t.Parallel()

	s := schema.MustNew(schema.Column{Name: "b", Type: schema.TypeBoolean})
	e := newEncoder(t, nil)
	for range 3 {
		out, err := e.Encode(context.Background(), schema.Values{true}, s)
		require.NoError(t, err)
		assert.Equal(t, "true", out["b"])
		out, err = e.Encode(context.Background(), schema.Values{false}, s)
		require.NoError(t, err)
		assert.Equal(t, "false", out["b"])
	}
}

func TestEncoder_Integer_RoundTrip(t *testing.T) {
	t.Parallel()

	s := schema.MustNew(schema.Column{Name: "i", Type: schema.TypeInteger})
	e := newEncoder(t, nil)
	for _, v := range []int64{0, 1, -1, 1234567, math.MaxInt64, math.MinInt64} {
		out, err := e.Encode(context.Background(), schema.Values{v}, s)
		require.NoError(t, err)
		decoded, err := strconv.ParseInt(out["i"], 10, 64)
		require.NoError(t, err)
		assert.Equal(t, v, decoded)
	}

	out, err := e.Encode(context.Background(), schema.Values{int64(9223372036854775807)}, s)
	require.NoError(t, err)
	assert.Equal(t, "9223372036854775807", out["i"])
}

func TestEncoder_Float_RoundTrip(t *testing.T) {
	t.Parallel()

	s := schema.MustNew(schema.Column{Name: "f", Type: schema.TypeFloat})
	e := newEncoder(t, nil)
	for _, v := range []float64{0, 0.1, -2.5, 1e21, 1.0 / 3.0, math.MaxFloat64, math.SmallestNonzeroFloat64} {
		out, err := e.Encode(context.Background(), schema.Values{v}, s)
		require.NoError(t, err)
		decoded, err := strconv.ParseFloat(out["f"], 64)
		require.NoError(t, err)
		assert.Equal(t, v, decoded) // nolint: testifylint
	}

	out, err := e.Encode(context.Background(), schema.Values{0.1}, s)
	require.NoError(t, err)
	assert.Equal(t, "0.1", out["f"])
}

func TestEncoder_String_Unmodified(t *testing.T) {
	t.Parallel()

	s := schema.MustNew(schema.Column{Name: "s", Type: schema.TypeString})
	value := "=SUM(A1:A2), \"quoted\"\nnew line"
	out, err := newEncoder(t, nil).Encode(context.Background(), schema.Values{value}, s)
	require.NoError(t, err)
	assert.Equal(t, value, out["s"])
}

func TestEncoder_Timestamp(t *testing.T) {
	t.Parallel()

	s := schema.MustNew(schema.Column{Name: "t", Type: schema.TypeTimestamp})
	epoch := schema.Values{time.Unix(0, 0)}

	out, err := newEncoder(t, nil).Encode(context.Background(), epoch, s)
	require.NoError(t, err)
	assert.Equal(t, "1970-01-01 00:00:00", out["t"])

	out, err = newEncoder(t, func(cfg *row.Config) { cfg.TimeZone = "+09:00" }).Encode(context.Background(), epoch, s)
	require.NoError(t, err)
	assert.Equal(t, "1970-01-01 09:00:00", out["t"])

	out, err = newEncoder(t, func(cfg *row.Config) { cfg.TimestampFormat = "%d.%m.%Y %H:%M" }).Encode(context.Background(), epoch, s)
	require.NoError(t, err)
	assert.Equal(t, "01.01.1970 00:00", out["t"])
}

func TestEncoder_SchemaMismatch(t *testing.T) {
	t.Parallel()

	s := allTypesSchema()
	out, err := newEncoder(t, nil).Encode(context.Background(), schema.Values{true}, s)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, row.ErrSchemaMismatch)
	assert.Equal(t, "record has 1 values, schema has 5 columns", err.Error())
}

func TestNewEncoder_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := row.NewEncoder(log.NewNopLogger(), row.Config{TimestampFormat: "%Y-%m-%d", TimeZone: "Mars/Olympus"})
	require.Error(t, err)
	assert.Equal(t, `unknown time zone "Mars/Olympus"`, err.Error())

	_, err = row.NewEncoder(log.NewNopLogger(), row.Config{TimestampFormat: "%Y-%", TimeZone: "UTC"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid timestamp format "%Y-%"`)
}

func TestEncoder_DebugTrace(t *testing.T) {
	t.Parallel()

	logger := log.NewDebugLogger()
	e, err := row.NewEncoder(logger, row.NewConfig())
	require.NoError(t, err)

	s := schema.MustNew(schema.Column{Name: "s", Type: schema.TypeString})
	_, err = e.Encode(context.Background(), schema.Values{"a\nb"}, s)
	require.NoError(t, err)

	logger.AssertJSONMessages(t, `{"level":"debug","message":"column \"s\" (string): \"a\\nb\"","component":"row.encoder"}`)
}

func TestParseTimeZone(t *testing.T) {
	t.Parallel()

	cases := []struct {
		zone   string
		offset int
	}{
		{"UTC", 0},
		{"", 0},
		{"+09:00", 9 * 3600},
		{"-0530", -(5*3600 + 30*60)},
		{"Etc/GMT-3", 3 * 3600},
	}

	for _, tc := range cases {
		loc, err := row.ParseTimeZone(tc.zone)
		require.NoError(t, err, tc.zone)
		_, offset := time.Unix(0, 0).In(loc).Zone()
		assert.Equal(t, tc.offset, offset, tc.zone)
	}

	_, err := row.ParseTimeZone("+25:00")
	assert.Error(t, err)
}

func TestRow_Values(t *testing.T) {
	t.Parallel()

	s := schema.MustNew(schema.Column{Name: "b", Type: schema.TypeString}, schema.Column{Name: "a", Type: schema.TypeString})
	assert.Equal(t, []string{"2", "1"}, row.Row{"a": "1", "b": "2"}.Values(s))
	assert.Equal(t, row.Row{"a": "a", "b": "b"}, row.Header(s))
}
