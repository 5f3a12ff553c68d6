// Package config loads typed configuration from environment variables and
// optional dotenv files.
//
// Struct fields are described with caarlos0/env tags; dotenv files are read
// with joho/godotenv and never override variables already set in the process
// environment:
//
//	type Config struct {
//		APIURL  string        `env:"API_URL" envDefault:"http://localhost:8000"`
//		Timeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"15s"`
//		Token   string        `env:"TOKEN,required"`
//	}
//
//	var cfg Config
//	err := config.Load(&cfg,
//		config.WithPrefix("GEODASH_"),
//		config.WithEnvFiles(".env", ".env.local"),
//	)
//
// Load parses afresh on every call and keeps no package-level state; callers
// pass the resulting value to the components that need it.
//
// Errors wrap ErrParsingConfig (bad or missing required values) or
// ErrLoadingEnvFile (unreadable dotenv file) and can be checked with
// errors.Is.
package config
