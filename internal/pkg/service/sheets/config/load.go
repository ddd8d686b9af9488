package config

import (
	"github.com/spf13/pflag"

	"github.com/keboola/sheets-writer/internal/pkg/service/common/configmap"
)

// Flags generates flags with the default values.
func Flags(fs *pflag.FlagSet) {
	configmap.MustGenerateFlags(fs, NewConfig())
}

// Load binds the config file, ENVs and parsed flags to the default configuration, then it is normalized and validated.
func Load(flags *pflag.FlagSet, envs configmap.EnvLookup, configFile string) (Config, error) {
	cfg := NewConfig()
	err := configmap.Bind(configmap.BindSpec{
		Flags:      flags,
		EnvPrefix:  EnvPrefix,
		Envs:       envs,
		ConfigFile: configFile,
	}, &cfg)
	if err != nil {
		return Config{}, err
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
