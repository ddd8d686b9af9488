// Package schema defines the columns of the written records.
//
// # Add a new column type "Foo"
//
// - Create a type constant for it: `TypeFoo Type = "foo"`.
// - Add it to the AllTypes function.
// - Add an accessor to the Record interface.
// - Handle it in the page reader and in the row encoder, tests iterate AllTypes and fail on a missing case.
package schema

import (
	"strings"
	"time"

	"github.com/keboola/sheets-writer/internal/pkg/utils/errors"
)

const (
	TypeBoolean   Type = "boolean"
	TypeInteger   Type = "integer"
	TypeFloat     Type = "float"
	TypeString    Type = "string"
	TypeTimestamp Type = "timestamp"
)

type Type string

type Types []Type

type Column struct {
	Name string `json:"name" validate:"required"`
	Type Type   `json:"type" validate:"required"`
}

// Schema is an ordered, immutable list of columns.
type Schema struct {
	columns []Column
}

// Record is one row of values, one per schema column, addressed by the column index.
// Typed accessors must be called only for the matching column type and a non-null value.
// A Record provided by a reader is valid only until the next record is requested.
type Record interface {
	Len() int
	IsNull(i int) bool
	Bool(i int) bool
	Int(i int) int64
	Float(i int) float64
	String(i int) string
	Timestamp(i int) time.Time
}

func AllTypes() Types {
	return Types{
		TypeBoolean,
		TypeInteger,
		TypeFloat,
		TypeString,
		TypeTimestamp,
	}
}

func (v Type) String() string {
	return string(v)
}

func (v Type) Validate() error {
	for _, t := range AllTypes() {
		if v == t {
			return nil
		}
	}
	return errors.Errorf(`invalid column type "%s", expected one of: %s`, v, AllTypes())
}

func (v Types) String() string {
	out := ""
	for i, t := range v {
		if i > 0 {
			out += ", "
		}
		out += `"` + t.String() + `"`
	}
	return out
}

// New validates the columns and creates a Schema.
// Column names must be unique and non-empty, types must be one of AllTypes.
func New(columns ...Column) (Schema, error) {
	errs := errors.NewMultiError()
	names := make(map[string]bool, len(columns))
	for i, c := range columns {
		if c.Name == "" {
			errs.Append(errors.Errorf(`column %d: name cannot be empty`, i))
		} else if names[c.Name] {
			errs.Append(errors.Errorf(`column %d: duplicate name "%s"`, i, c.Name))
		}
		names[c.Name] = true
		if err := c.Type.Validate(); err != nil {
			errs.Append(errors.Errorf(`column "%s": %w`, c.Name, err))
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return Schema{}, errors.PrefixError(err, "invalid schema")
	}

	return Schema{columns: append([]Column(nil), columns...)}, nil
}

func MustNew(columns ...Column) Schema {
	s, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Schema) Len() int {
	return len(s.columns)
}

func (s Schema) Column(i int) Column {
	return s.columns[i]
}

// Columns returns a copy of the columns.
func (s Schema) Columns() []Column {
	return append([]Column(nil), s.columns...)
}

func (s Schema) Names() []string {
	out := make([]string, len(s.columns))
	for i, c := range s.columns {
		out[i] = c.Name
	}
	return out
}

// ParseColumns parses column definitions in the "name:type" form, for example "id:integer".
func ParseColumns(defs []string) (Schema, error) {
	columns := make([]Column, 0, len(defs))
	for _, def := range defs {
		name, typ, found := strings.Cut(strings.TrimSpace(def), ":")
		if !found {
			return Schema{}, errors.Errorf(`invalid column definition "%s", expected "name:type"`, def)
		}
		columns = append(columns, Column{Name: strings.TrimSpace(name), Type: Type(strings.ToLower(strings.TrimSpace(typ)))})
	}
	return New(columns...)
}
