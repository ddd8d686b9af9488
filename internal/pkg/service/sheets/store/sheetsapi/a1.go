package sheetsapi

import (
	"strconv"
	"strings"
)

// ColumnLetters converts a one-based column number to the A1 notation, 1 => A, 27 => AA.
func ColumnLetters(n int) string {
	if n < 1 {
		panic("column number must be positive, got " + strconv.Itoa(n))
	}

	var out []byte
	for n > 0 {
		n--
		out = append(out, byte('A'+n%26))
		n /= 26
	}

	// Reverse
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

// QuoteTitle quotes the worksheet title for use in an A1 range, single quotes are doubled.
func QuoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// AppendRange returns the first row of the table where the rows are appended, for example 'Sheet 1'!B3:D3.
func AppendRange(title string, startColumn, startRow, columns int) string {
	if columns < 1 {
		columns = 1
	}
	r := strconv.Itoa(startRow)
	first := ColumnLetters(startColumn)
	last := ColumnLetters(startColumn + columns - 1)
	return QuoteTitle(title) + "!" + first + r + ":" + last + r
}
