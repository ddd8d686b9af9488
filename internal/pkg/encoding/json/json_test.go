package json_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keboola/sheets-writer/internal/pkg/encoding/json"
)

func TestEncodeString(t *testing.T) {
	t.Parallel()

	out, err := json.EncodeString(map[string]any{"foo": "bar", "baz": 1}, false)
	require.NoError(t, err)
	assert.JSONEq(t, `{"foo":"bar","baz":1}`, out)
}

func TestDecodeString_Invalid(t *testing.T) {
	t.Parallel()

	var v map[string]any
	err := json.DecodeString(`{"foo":`, &v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json decoding failed")
}
