package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/geodash/pkg/config"
)

type appConfig struct {
	Name    string        `env:"NAME" envDefault:"geodash"`
	Port    int           `env:"PORT" envDefault:"8080"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`
	Tags    []string      `env:"TAGS" envSeparator:","`
	Quoted  string        `env:"QUOTED"`
}

type requiredConfig struct {
	Token string `env:"TOKEN,required"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg appConfig
	err := config.Load(&cfg, config.WithEnvironment(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, "geodash", cfg.Name)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Empty(t, cfg.Tags)
}

func TestLoad_Prefix(t *testing.T) {
	t.Setenv("GEODASH_TEST_NAME", "prefixed")
	t.Setenv("GEODASH_TEST_TIMEOUT", "2s")

	var cfg appConfig
	err := config.Load(&cfg, config.WithPrefix("GEODASH_TEST_"))
	require.NoError(t, err)

	assert.Equal(t, "prefixed", cfg.Name)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
}

func TestLoad_EnvFile(t *testing.T) {
	t.Setenv("CFGTEST_PORT", "7000")

	var cfg appConfig
	err := config.Load(&cfg,
		config.WithPrefix("CFGTEST_"),
		config.WithEnvFiles("testdata/.env.test", "testdata/.env.missing"),
	)
	require.NoError(t, err)

	assert.Equal(t, "from_file", cfg.Name)
	assert.Equal(t, 7000, cfg.Port, "process environment wins over file")
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Tags)
	assert.Equal(t, "quoted value", cfg.Quoted)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("nil pointer", func(t *testing.T) {
		var cfg *appConfig
		assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
	})

	t.Run("missing required", func(t *testing.T) {
		var cfg requiredConfig
		err := config.Load(&cfg, config.WithEnvironment(map[string]string{}))
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("invalid value", func(t *testing.T) {
		var cfg appConfig
		err := config.Load(&cfg, config.WithEnvironment(map[string]string{"PORT": "eighty"}))
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("must load panics", func(t *testing.T) {
		var cfg requiredConfig
		assert.Panics(t, func() {
			config.MustLoad(&cfg, config.WithEnvironment(map[string]string{}))
		})
	})
}
