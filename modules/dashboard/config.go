package dashboard

import (
	"fmt"
	"time"

	"github.com/dmitrymomot/geodash/pkg/config"
	"github.com/dmitrymomot/geodash/pkg/httpserver"
	"github.com/dmitrymomot/geodash/pkg/redis"
)

// EnvPrefix namespaces every setting, e.g. GEODASH_API_URL.
const EnvPrefix = "GEODASH_"

// Storage drivers for the session snapshot.
const (
	StorageFile   = "file"
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Config is the full dashboard configuration.
type Config struct {
	Env       string `env:"ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT"`

	APIBaseURL    string        `env:"API_URL" envDefault:"http://localhost:8000"`
	ClientTimeout time.Duration `env:"CLIENT_TIMEOUT" envDefault:"15s"`

	LayerManifest     string `env:"LAYER_MANIFEST"`
	FeatureServiceURL string `env:"FEATURE_SERVICE_URL"`

	GeocoderURL       string        `env:"GEOCODER_URL" envDefault:"https://nominatim.openstreetmap.org/search"`
	GeocoderUserAgent string        `env:"GEOCODER_USER_AGENT" envDefault:"geodash/1.0"`
	GeocoderRate      float64       `env:"GEOCODER_RATE" envDefault:"1"`
	GeocoderCacheSize int           `env:"GEOCODER_CACHE_SIZE" envDefault:"256"`
	GeocoderCacheTTL  time.Duration `env:"GEOCODER_CACHE_TTL" envDefault:"1h"`

	StorageDriver    string `env:"STORAGE_DRIVER" envDefault:"file"`
	StateDir         string `env:"STATE_DIR" envDefault:".geodash"`
	PersistCSRFToken bool   `env:"PERSIST_CSRF_TOKEN" envDefault:"true"`

	Redis redis.Config
	HTTP  httpserver.Config `envPrefix:"HTTP_"`
}

// LoadConfig reads GEODASH_* variables, after loading .env if present.
func LoadConfig(opts ...config.Option) (Config, error) {
	var cfg Config
	opts = append([]config.Option{config.WithPrefix(EnvPrefix), config.WithEnvFiles(".env")}, opts...)
	if err := config.Load(&cfg, opts...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that env parsing cannot.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageFile, StorageMemory, StorageRedis:
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.StorageDriver)
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("%w: api url is required", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "", "json", "text":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.GeocoderRate < 0 {
		return fmt.Errorf("%w: geocoder rate must not be negative", ErrInvalidConfig)
	}
	return nil
}
