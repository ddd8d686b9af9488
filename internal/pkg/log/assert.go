package log

import (
	"reflect"
	"strings"

	"github.com/keboola/go-utils/pkg/wildcards"
	"github.com/stretchr/testify/assert"

	"github.com/keboola/sheets-writer/internal/pkg/encoding/json"
	"github.com/keboola/sheets-writer/internal/pkg/utils/errors"
)

type jsonLine struct {
	text string
	data map[string]any
}

// CompareJSONMessages checks that expected JSON lines appear in actual in the same order.
// Actual may contain extra lines and extra fields, string values are compared using wildcards.
func CompareJSONMessages(expected string, actual string) error {
	expectedLines, err := decodeJSONLines(expected)
	if err != nil {
		return errors.PrefixError(err, "invalid expected messages")
	}
	actualLines, err := decodeJSONLines(actual)
	if err != nil {
		return errors.PrefixError(err, "invalid actual messages")
	}

	next := 0
	for _, exp := range expectedLines {
		found := false
		start := next
		for next < len(actualLines) {
			act := actualLines[next]
			next++
			if linesMatch(exp.data, act.data) {
				found = true
				break
			}
		}

		if !found {
			remaining := make([]string, 0, len(actualLines)-start)
			for _, act := range actualLines[start:] {
				remaining = append(remaining, act.text)
			}
			return errors.Errorf("Expected:\n-----\n%s\n-----\nActual:\n-----\n%s", exp.text, strings.Join(remaining, "\n"))
		}
	}

	return nil
}

// AssertJSONMessages is CompareJSONMessages reported to the test.
func AssertJSONMessages(t assert.TestingT, expected string, actual string, msgAndArgs ...any) bool {
	if err := CompareJSONMessages(expected, actual); err != nil {
		return assert.Fail(t, err.Error(), msgAndArgs...)
	}
	return true
}

func decodeJSONLines(str string) (out []jsonLine, err error) {
	for _, text := range strings.Split(strings.Trim(str, "\n"), "\n") {
		if strings.TrimSpace(text) == "" {
			continue
		}
		line := jsonLine{text: text}
		if err := json.DecodeString(text, &line.data); err != nil {
			return nil, errors.Errorf("line is not a JSON object: %s", text)
		}
		out = append(out, line)
	}
	return out, nil
}

func linesMatch(expected, actual map[string]any) bool {
	for key, value := range expected {
		actualValue, ok := actual[key]
		if !ok || !valueMatches(value, actualValue) {
			return false
		}
	}
	return true
}

func valueMatches(expected any, actual any) bool {
	if expectedStr, ok := expected.(string); ok {
		actualStr, ok := actual.(string)
		return ok && wildcards.Compare(expectedStr, actualStr) == nil
	}
	return reflect.DeepEqual(expected, actual)
}
