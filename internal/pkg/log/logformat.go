package log

import (
	"strings"

	"github.com/keboola/sheets-writer/internal/pkg/utils/errors"
)

// Format selects the encoder of the service logger.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

func Formats() []Format {
	return []Format{FormatConsole, FormatJSON}
}

// ParseFormat ignores case and surrounding spaces.
// An unknown value returns FormatConsole together with the error.
func ParseFormat(str string) (Format, error) {
	v := Format(strings.ToLower(strings.TrimSpace(str)))
	for _, f := range Formats() {
		if v == f {
			return f, nil
		}
	}

	names := make([]string, 0, len(Formats()))
	for _, f := range Formats() {
		names = append(names, `"`+f.String()+`"`)
	}
	return FormatConsole, errors.Errorf(`invalid log format "%s", expected one of: %s`, str, strings.Join(names, ", "))
}

func (f Format) String() string {
	return string(f)
}
