package page

import (
	"bytes"
	"math"
	"strconv"
	"time"
	"unicode/utf16"

	"github.com/relvacode/iso8601"
	"github.com/valyala/fastjson"

	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/definition/schema"
	"github.com/keboola/sheets-writer/internal/pkg/utils/errors"
)

// Reader iterates records of a page.
// The current record is backed by the reader's parser, it is valid only until the next call of the Next method.
type Reader struct {
	schema     schema.Schema
	parser     fastjson.Parser
	data       []byte
	line       int
	values     []*fastjson.Value
	timestamps []time.Time
	raw        []byte
	err        error
}

// record is the schema.Record view of the current reader state.
type record struct {
	r *Reader
}

func NewReader(s schema.Schema) *Reader {
	return &Reader{schema: s, timestamps: make([]time.Time, s.Len())}
}

// SetPage resets the reader to the start of the page.
func (r *Reader) SetPage(p Page) {
	r.data = p
	r.line = 0
	r.values = nil
	r.err = nil
}

// Next decodes the next record, it returns false at the end of the page or on an error.
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}

	for len(r.data) > 0 {
		var line []byte
		if i := bytes.IndexByte(r.data, '\n'); i >= 0 {
			line, r.data = r.data[:i], r.data[i+1:]
		} else {
			line, r.data = r.data, nil
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		r.line++
		if err := r.decode(line); err != nil {
			r.values = nil
			r.err = errors.Errorf("invalid record on line %d: %w", r.line, err)
			return false
		}
		return true
	}

	r.values = nil
	return false
}

// Record returns the current record.
func (r *Reader) Record() schema.Record {
	return record{r: r}
}

func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) decode(line []byte) error {
	v, err := r.parser.ParseBytes(line)
	if err != nil {
		return errors.Wrap(err, "malformed JSON")
	}

	values, err := v.Array()
	if err != nil {
		return errors.New("expected JSON array")
	}

	if len(values) != r.schema.Len() {
		return errors.Errorf("expected %d values, found %d", r.schema.Len(), len(values))
	}

	for i, value := range values {
		if err := r.check(i, value); err != nil {
			return errors.Errorf(`column "%s": %w`, r.schema.Column(i).Name, err)
		}
	}

	r.values = values
	return nil
}

func (r *Reader) check(i int, v *fastjson.Value) error {
	typ := r.schema.Column(i).Type
	if typ == schema.TypeString {
		// Strings are unescaped on the first access, the escape sequences are visible only before
		r.raw = v.MarshalTo(r.raw[:0])
	}

	if v.Type() == fastjson.TypeNull {
		return nil
	}

	switch typ {
	case schema.TypeBoolean:
		if _, err := v.Bool(); err != nil {
			return errors.Errorf("expected boolean, found %s", v.Type())
		}
	case schema.TypeInteger:
		if _, err := v.Int64(); err != nil {
			return errors.Errorf("expected integer, found %s", v)
		}
	case schema.TypeFloat:
		f, err := v.Float64()
		if err != nil {
			return errors.Errorf("expected float, found %s", v.Type())
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return errors.Errorf("expected finite float, found %s", v)
		}
	case schema.TypeString:
		if _, err := v.StringBytes(); err != nil {
			return errors.Errorf("expected string, found %s", v.Type())
		}
		if err := checkSurrogates(r.raw); err != nil {
			return err
		}
	case schema.TypeTimestamp:
		t, err := parseTimestamp(v)
		if err != nil {
			return err
		}
		r.timestamps[i] = t
	default:
		return errors.Errorf(`unexpected column type "%s"`, typ)
	}
	return nil
}

// checkSurrogates rejects \u escapes of UTF-16 surrogates which do not form a pair.
func checkSurrogates(raw []byte) error {
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' {
			continue
		}
		i++
		if i >= len(raw) || raw[i] != 'u' {
			continue
		}

		r, ok := parseEscapedRune(raw[i-1:])
		if !ok || !utf16.IsSurrogate(r) {
			continue
		}
		if r < 0xdc00 {
			if r2, ok := parseEscapedRune(raw[i+5:]); ok && r2 >= 0xdc00 && r2 < 0xe000 {
				i += 10
				continue
			}
		}
		return errors.Errorf("invalid string: unpaired surrogate %s", raw[i-1:i+5])
	}
	return nil
}

// parseEscapedRune parses the \uXXXX sequence at the start of b.
func parseEscapedRune(b []byte) (rune, bool) {
	if len(b) < 6 || b[0] != '\\' || b[1] != 'u' {
		return 0, false
	}
	x, err := strconv.ParseUint(string(b[2:6]), 16, 16)
	if err != nil {
		return 0, false
	}
	return rune(x), true
}

func parseTimestamp(v *fastjson.Value) (time.Time, error) {
	switch v.Type() {
	case fastjson.TypeString:
		b, _ := v.StringBytes()
		t, err := iso8601.Parse(b)
		if err != nil {
			return time.Time{}, errors.Errorf(`expected ISO 8601 timestamp, found "%s"`, b)
		}
		return t, nil
	case fastjson.TypeNumber:
		// Unix seconds, optionally with a fractional part
		if sec, err := v.Int64(); err == nil {
			return time.Unix(sec, 0).UTC(), nil
		}
		f, err := strconv.ParseFloat(v.String(), 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return time.Time{}, errors.Errorf("expected Unix timestamp, found %s", v)
		}
		sec := int64(f)
		nsec := int64((f - float64(sec)) * float64(time.Second))
		return time.Unix(sec, nsec).UTC(), nil
	default:
		return time.Time{}, errors.Errorf("expected timestamp, found %s", v.Type())
	}
}

func (v record) Len() int {
	return len(v.r.values)
}

func (v record) IsNull(i int) bool {
	return v.r.values[i].Type() == fastjson.TypeNull
}

func (v record) Bool(i int) bool {
	return v.r.values[i].GetBool()
}

func (v record) Int(i int) int64 {
	return v.r.values[i].GetInt64()
}

func (v record) Float(i int) float64 {
	return v.r.values[i].GetFloat64()
}

func (v record) String(i int) string {
	return string(v.r.values[i].GetStringBytes())
}

func (v record) Timestamp(i int) time.Time {
	return v.r.timestamps[i]
}
