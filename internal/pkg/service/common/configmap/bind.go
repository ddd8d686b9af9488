// Package configmap binds a configuration structure to flags, ENVs and a config file.
//
// Priority of the sources: 1. flag, 2. ENV, 3. config file, 4. default value from the structure.
package configmap

import (
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/keboola/sheets-writer/internal/pkg/utils/errors"
)

// EnvLookup returns the value of the ENV, for example os.LookupEnv.
type EnvLookup func(key string) (string, bool)

type BindSpec struct {
	// Flags must be generated by GenerateFlags from the same structure, and parsed.
	Flags *pflag.FlagSet
	// EnvPrefix, for example "MY_APP_", ENVs are ignored if empty.
	EnvPrefix string
	// Envs default to os.LookupEnv.
	Envs EnvLookup
	// ConfigFile is an optional JSON or YAML file.
	ConfigFile string
}

// Bind values from all sources to the target, the target values are used as the defaults.
func Bind(spec BindSpec, target any) error {
	fields, err := fieldsOf(target)
	if err != nil {
		return err
	}

	v := viper.New()
	for _, f := range fields {
		v.SetDefault(f.Key, f.Value.Interface())
	}

	// Config file
	if spec.ConfigFile != "" {
		v.SetConfigFile(spec.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return errors.Errorf(`cannot read config file "%s": %w`, spec.ConfigFile, err)
		}
	}

	// ENVs override the config file
	if spec.EnvPrefix != "" {
		lookup := spec.Envs
		if lookup == nil {
			lookup = os.LookupEnv
		}
		fromEnv := make(map[string]any)
		for _, f := range fields {
			if value, found := lookup(flagToEnv(spec.EnvPrefix, f.FlagName)); found {
				fromEnv[f.Key] = value
			}
		}
		if err := v.MergeConfigMap(fromEnv); err != nil {
			return err
		}
	}

	// Changed flags override everything
	if spec.Flags != nil {
		for _, f := range fields {
			if flag := spec.Flags.Lookup(f.FlagName); flag != nil && flag.Changed {
				if err := v.BindPFlag(f.Key, flag); err != nil {
					return err
				}
			}
		}
	}

	return v.Unmarshal(target, func(c *mapstructure.DecoderConfig) {
		c.TagName = configKeyTag
		c.WeaklyTypedInput = true
		c.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
}
