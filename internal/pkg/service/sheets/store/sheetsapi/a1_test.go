package sheetsapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnLetters(t *testing.T) {
	t.Parallel()

	cases := map[int]string{1: "A", 2: "B", 26: "Z", 27: "AA", 52: "AZ", 53: "BA", 702: "ZZ", 703: "AAA"}
	for n, expected := range cases {
		assert.Equal(t, expected, ColumnLetters(n), n)
	}

	assert.Panics(t, func() { ColumnLetters(0) })
}

func TestQuoteTitle(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `'Sheet1'`, QuoteTitle("Sheet1"))
	assert.Equal(t, `'Sheet ''1'''`, QuoteTitle("Sheet '1'"))
}

func TestAppendRange(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `'Sheet ''1'''!A1:C1`, AppendRange("Sheet '1'", 1, 1, 3))
	assert.Equal(t, `'Data'!B1:B1`, AppendRange("Data", 2, 1, 1))
	assert.Equal(t, `'Data'!Z1:AB1`, AppendRange("Data", 26, 1, 3))
	assert.Equal(t, `'Data'!A10:B10`, AppendRange("Data", 1, 10, 2))
}
