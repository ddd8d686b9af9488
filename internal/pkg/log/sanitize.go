package log

import "strings"

var sanitizer = strings.NewReplacer("\n", `\n`, "\r", `\r`, "\t", `\t`)

// Sanitize escapes line breaks and tabs, so a logged value stays on one line.
func Sanitize(in string) string {
	return sanitizer.Replace(in)
}
