// Package row converts typed records to text rows accepted by the spreadsheet.
package row

import (
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/definition/schema"
)

// Row maps a column name to the cell text.
// It always contains exactly one entry per schema column.
type Row map[string]string

// Values returns cell texts in the schema column order.
func (r Row) Values(s schema.Schema) []string {
	out := make([]string, s.Len())
	for i, name := range s.Names() {
		out[i] = r[name]
	}
	return out
}

// Header returns a row with the column names as values.
func Header(s schema.Schema) Row {
	out := make(Row, s.Len())
	for _, name := range s.Names() {
		out[name] = name
	}
	return out
}
