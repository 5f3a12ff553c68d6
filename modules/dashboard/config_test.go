package dashboard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/geodash/modules/dashboard"
	"github.com/dmitrymomot/geodash/pkg/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := dashboard.LoadConfig(config.WithEnvironment(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.ClientTimeout)
	assert.Equal(t, dashboard.StorageFile, cfg.StorageDriver)
	assert.Equal(t, ".geodash", cfg.StateDir)
	assert.True(t, cfg.PersistCSRFToken)
	assert.Equal(t, 1.0, cfg.GeocoderRate)
	assert.Equal(t, "geodash:", cfg.Redis.KeyPrefix)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Parallel()

	cfg, err := dashboard.LoadConfig(config.WithEnvironment(map[string]string{
		"GEODASH_API_URL":            "https://api.example.com",
		"GEODASH_STORAGE_DRIVER":     "redis",
		"GEODASH_REDIS_URL":          "redis://cache:6379/2",
		"GEODASH_PERSIST_CSRF_TOKEN": "false",
		"GEODASH_HTTP_ADDR":          "127.0.0.1:9090",
		"GEODASH_GEOCODER_CACHE_TTL": "5m",
	}))
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	assert.Equal(t, dashboard.StorageRedis, cfg.StorageDriver)
	assert.Equal(t, "redis://cache:6379/2", cfg.Redis.ConnectionURL)
	assert.False(t, cfg.PersistCSRFToken)
	assert.Equal(t, "127.0.0.1:9090", cfg.HTTP.Addr)
	assert.Equal(t, 5*time.Minute, cfg.GeocoderCacheTTL)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Parallel()

	tests := map[string]map[string]string{
		"unknown driver": {"GEODASH_STORAGE_DRIVER": "sqlite"},
		"negative rate":  {"GEODASH_GEOCODER_RATE": "-1"},
		"log format":     {"GEODASH_LOG_FORMAT": "xml"},
	}
	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := dashboard.LoadConfig(config.WithEnvironment(vars))
			assert.ErrorIs(t, err, dashboard.ErrInvalidConfig)
		})
	}
}

func TestConfigValidate_EmptyAPIURL(t *testing.T) {
	t.Parallel()

	cfg, err := dashboard.LoadConfig(config.WithEnvironment(map[string]string{}))
	require.NoError(t, err)
	cfg.APIBaseURL = ""
	assert.ErrorIs(t, cfg.Validate(), dashboard.ErrInvalidConfig)
}
