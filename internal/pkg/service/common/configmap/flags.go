package configmap

import (
	"reflect"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/keboola/sheets-writer/internal/pkg/utils/errors"
)

const (
	configKeyTag   = "configKey"
	configUsageTag = "configUsage"
	configShortTag = "configShorthand"
)

// field is a leaf field of the configuration structure.
type field struct {
	Key       string
	FlagName  string
	Usage     string
	Shorthand string
	Value     reflect.Value
}

func MustGenerateFlags(fs *pflag.FlagSet, v any) {
	if err := GenerateFlags(fs, v); err != nil {
		panic(err)
	}
}

// GenerateFlags generates flags from the configuration structure.
// Each field tagged by the "configKey" tag is mapped to a flag, the current field value is the default value.
// Field can optionally have the "configUsage" and "configShorthand" tags.
func GenerateFlags(fs *pflag.FlagSet, v any) error {
	fields, err := fieldsOf(v)
	if err != nil {
		return err
	}

	for _, f := range fields {
		switch value := f.Value.Interface().(type) {
		case time.Duration:
			fs.DurationP(f.FlagName, f.Shorthand, value, f.Usage)
		case int:
			fs.IntP(f.FlagName, f.Shorthand, value, f.Usage)
		case int64:
			fs.Int64P(f.FlagName, f.Shorthand, value, f.Usage)
		case float64:
			fs.Float64P(f.FlagName, f.Shorthand, value, f.Usage)
		case bool:
			fs.BoolP(f.FlagName, f.Shorthand, value, f.Usage)
		case string:
			fs.StringP(f.FlagName, f.Shorthand, value, f.Usage)
		case []string:
			fs.StringSliceP(f.FlagName, f.Shorthand, value, f.Usage)
		default:
			return errors.Errorf(`unexpected type "%T" of the field "%s"`, value, f.Key)
		}
	}

	return nil
}

// fieldsOf returns all fields with the "configKey" tag, embedded structs with the ",squash" tag are iterated.
func fieldsOf(v any) ([]field, error) {
	value := reflect.ValueOf(v)
	if value.Kind() == reflect.Pointer {
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, errors.Errorf(`cannot map type "%s": it is not a struct or a pointer to a struct`, value.Type().String())
	}

	var out []field
	typ := value.Type()
	for i := range typ.NumField() {
		structField := typ.Field(i)
		tag, found := structField.Tag.Lookup(configKeyTag)
		if !found || tag == "-" || !structField.IsExported() {
			continue
		}

		key, opts, _ := strings.Cut(tag, ",")
		if key == "" && opts == "squash" {
			nested, err := fieldsOf(value.Field(i).Interface())
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
			continue
		}

		out = append(out, field{
			Key:       key,
			FlagName:  fieldToFlagName(key),
			Usage:     structField.Tag.Get(configUsageTag),
			Shorthand: structField.Tag.Get(configShortTag),
			Value:     value.Field(i),
		})
	}

	return out, nil
}
