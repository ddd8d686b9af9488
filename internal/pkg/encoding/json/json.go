// Package json wraps jsoniter with the standard library compatible configuration.
package json

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/keboola/sheets-writer/internal/pkg/utils/errors"
)

var api = jsoniter.ConfigCompatibleWithStandardLibrary // nolint: gochecknoglobals

func Encode(v any, pretty bool) ([]byte, error) {
	var out []byte
	var err error
	if pretty {
		out, err = api.MarshalIndent(v, "", "  ")
	} else {
		out, err = api.Marshal(v)
	}
	if err != nil {
		return nil, errors.Wrap(err, "json encoding failed")
	}
	return out, nil
}

func EncodeString(v any, pretty bool) (string, error) {
	out, err := Encode(v, pretty)
	return string(out), err
}

func MustEncodeString(v any, pretty bool) string {
	out, err := EncodeString(v, pretty)
	if err != nil {
		panic(err)
	}
	return out
}

func Decode(data []byte, v any) error {
	if err := api.Unmarshal(data, v); err != nil {
		return errors.Wrap(err, "json decoding failed")
	}
	return nil
}

func DecodeString(data string, v any) error {
	return Decode([]byte(data), v)
}
