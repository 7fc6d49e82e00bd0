// Package config provides the process configuration: the market data API
// credential and endpoint, and logging options.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/stockmcp", "config")

const (
	// EnvAPIKey is the environment variable holding the API key
	EnvAPIKey = "ALPHA_VANTAGE_API_KEY"
	// EnvFile is the name of the optional environment file in the working directory
	EnvFile = ".env"
	// DefaultBaseURL is the Alpha Vantage query endpoint
	DefaultBaseURL = "https://www.alphavantage.co/query"
)

// Log formats
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config is constructed once at startup and passed to the components
// that need it. It is not modified afterwards.
type Config struct {
	// APIKey is the Alpha Vantage API key, required
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" validate:"required"`
	// BaseURL is the query endpoint
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"required,url"`
	// Timeout of the upstream request, zero means no timeout
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" validate:"gte=0"`
	// LogLevel is one of TRACE, DEBUG, INFO, NOTICE, WARNING, ERROR, CRITICAL
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,oneof=TRACE DEBUG INFO NOTICE WARNING ERROR CRITICAL"`
	// LogFormat is text or json
	LogFormat string `json:"log_format,omitempty" yaml:"log_format,omitempty" validate:"omitempty,oneof=text json"`
}

// Default returns the configuration without a credential
func Default() *Config {
	return &Config{
		BaseURL:   DefaultBaseURL,
		LogLevel:  "INFO",
		LogFormat: LogFormatText,
	}
}

// Load builds the configuration from the optional YAML file,
// the .env file in dir and the process environment, in that order of
// increasing precedence, and validates it.
func Load(file, dir string) (*Config, error) {
	cfg := Default()
	if file != "" {
		bs, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read config file %q", file)
		}
		if err = yaml.Unmarshal(bs, cfg); err != nil {
			return nil, errors.Wrapf(err, "unable to parse config file %q", file)
		}
	}

	if _, err := LoadEnvFile(dir); err != nil {
		return nil, err
	}
	if key := os.Getenv(EnvAPIKey); key != "" {
		cfg.APIKey = key
	}

	logger.KV(xlog.INFO, "api_key_length", len(cfg.APIKey), "base_url", cfg.BaseURL)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFile loads the .env file from dir into the process environment,
// if the file exists. Variables that are already set are not overridden.
// It returns the absolute path of the file that was looked up.
func LoadEnvFile(dir string) (string, error) {
	path, err := filepath.Abs(filepath.Join(dir, EnvFile))
	if err != nil {
		return "", errors.Wrap(err, "unable to resolve env file path")
	}

	if _, err = os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			logger.KV(xlog.INFO, "status", "env_file_not_found", "path", path)
			return path, nil
		}
		return path, errors.Wrapf(err, "unable to stat %q", path)
	}

	logger.KV(xlog.INFO, "status", "loading_env_file", "path", path)
	if err = godotenv.Load(path); err != nil {
		return path, errors.Wrapf(err, "unable to load %q", path)
	}
	return path, nil
}

// Validate returns an error if the configuration is not usable
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.Newf("%s is not set", EnvAPIKey)
	}
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}
