package configmap_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keboola/sheets-writer/internal/pkg/service/common/configmap"
)

type testConfig struct {
	Name     string        `configKey:"name" configUsage:"Name of the app."`
	FooBar   string        `configKey:"fooBar" configShorthand:"f"`
	Count    int           `configKey:"count"`
	Enabled  bool          `configKey:"enabled"`
	Timeout  time.Duration `configKey:"timeout"`
	Tags     []string      `configKey:"tags"`
	Embedded testEmbedded  `configKey:",squash"`
	Ignored  string
}

type testEmbedded struct {
	Zone string `configKey:"zone"`
}

func defaultConfig() testConfig {
	return testConfig{Name: "default", Count: 1, Timeout: time.Second, Embedded: testEmbedded{Zone: "UTC"}}
}

func TestGenerateFlags(t *testing.T) {
	t.Parallel()

	fs := pflag.NewFlagSet("app", pflag.ContinueOnError)
	require.NoError(t, configmap.GenerateFlags(fs, defaultConfig()))

	var names []string
	fs.VisitAll(func(flag *pflag.Flag) {
		names = append(names, flag.Name)
	})
	assert.Equal(t, []string{"count", "enabled", "foo-bar", "name", "tags", "timeout", "zone"}, names)
	assert.Equal(t, "default", fs.Lookup("name").DefValue)
	assert.Equal(t, "Name of the app.", fs.Lookup("name").Usage)
	assert.Equal(t, "f", fs.Lookup("foo-bar").Shorthand)
	assert.Equal(t, "1s", fs.Lookup("timeout").DefValue)

	err := configmap.GenerateFlags(fs, "string")
	require.Error(t, err)
	assert.Equal(t, `cannot map type "string": it is not a struct or a pointer to a struct`, err.Error())
}

func TestBind_Priority(t *testing.T) {
	t.Parallel()

	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("name: from file\nfooBar: from file\ncount: 3\ntags: [a, b]\n"), 0o600))

	envs := map[string]string{
		"MY_APP_FOO_BAR": "from env",
		"MY_APP_TIMEOUT": "5s",
		"MY_APP_ENABLED": "true",
	}

	fs := pflag.NewFlagSet("app", pflag.ContinueOnError)
	configmap.MustGenerateFlags(fs, defaultConfig())
	require.NoError(t, fs.Parse([]string{"--name", "from flag", "--zone", "+09:00"}))

	cfg := defaultConfig()
	err := configmap.Bind(configmap.BindSpec{
		Flags:      fs,
		EnvPrefix:  "MY_APP_",
		Envs:       func(key string) (string, bool) { v, ok := envs[key]; return v, ok },
		ConfigFile: configFile,
	}, &cfg)
	require.NoError(t, err)

	assert.Equal(t, testConfig{
		Name:     "from flag",
		FooBar:   "from env",
		Count:    3,
		Enabled:  true,
		Timeout:  5 * time.Second,
		Tags:     []string{"a", "b"},
		Embedded: testEmbedded{Zone: "+09:00"},
	}, cfg)
}

func TestBind_Defaults(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	require.NoError(t, configmap.Bind(configmap.BindSpec{EnvPrefix: "MY_APP_", Envs: func(string) (string, bool) { return "", false }}, &cfg))
	assert.Equal(t, defaultConfig(), cfg)
}

func TestBind_MissingFile(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	err := configmap.Bind(configmap.BindSpec{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")}, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `cannot read config file`)
}
