package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/effective-security/stockmcp/config"
	"github.com/effective-security/xlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Env(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "envkey")

	cfg, err := config.Load("", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "envkey", cfg.APIKey)
	assert.Equal(t, config.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, time.Duration(0), cfg.Timeout)
	assert.Equal(t, config.LogFormatText, cfg.LogFormat)
}

func TestLoad_LogsKeyLength(t *testing.T) {
	var b bytes.Buffer
	xlog.SetFormatter(xlog.NewStringFormatter(&b))
	xlog.SetGlobalLogLevel(xlog.INFO)
	defer xlog.SetFormatter(xlog.NewStringFormatter(os.Stderr))

	t.Setenv(config.EnvAPIKey, "0123456789")
	_, err := config.Load("", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, b.String(), "api_key_length")
	assert.Contains(t, b.String(), "10")
	assert.NotContains(t, b.String(), "0123456789")
}

func TestLoad_MissingKey(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "")

	_, err := config.Load("", t.TempDir())
	assert.EqualError(t, err, "ALPHA_VANTAGE_API_KEY is not set")
}

func TestLoad_EnvFile(t *testing.T) {
	// set to empty so t.Setenv restores the original value,
	// godotenv does not override non-empty variables
	t.Setenv(config.EnvAPIKey, "")
	require.NoError(t, os.Unsetenv(config.EnvAPIKey))

	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, config.EnvFile), []byte("ALPHA_VANTAGE_API_KEY=filekey\n"), 0o600)
	require.NoError(t, err)

	path, err := config.LoadEnvFile(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, config.EnvFile), path)

	cfg, err := config.Load("", dir)
	require.NoError(t, err)
	assert.Equal(t, "filekey", cfg.APIKey)
}

func TestLoad_File(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "")

	dir := t.TempDir()
	file := filepath.Join(dir, "stockmcp.yaml")
	err := os.WriteFile(file, []byte(`
api_key: yamlkey
base_url: http://localhost:8080/query
timeout: 5s
log_level: DEBUG
log_format: json
`), 0o600)
	require.NoError(t, err)

	cfg, err := config.Load(file, dir)
	require.NoError(t, err)
	assert.Equal(t, "yamlkey", cfg.APIKey)
	assert.Equal(t, "http://localhost:8080/query", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, config.LogFormatJSON, cfg.LogFormat)

	t.Setenv(config.EnvAPIKey, "envkey")
	cfg, err = config.Load(file, dir)
	require.NoError(t, err)
	assert.Equal(t, "envkey", cfg.APIKey, "environment wins over file")

	_, err = config.Load(filepath.Join(dir, "missing.yaml"), dir)
	assert.ErrorContains(t, err, "unable to read config file")
}

func TestValidate(t *testing.T) {
	tcases := []struct {
		name string
		cfg  config.Config
		err  string
	}{
		{
			name: "valid",
			cfg:  config.Config{APIKey: "k", BaseURL: config.DefaultBaseURL},
		},
		{
			name: "no key",
			cfg:  config.Config{BaseURL: config.DefaultBaseURL},
			err:  "ALPHA_VANTAGE_API_KEY is not set",
		},
		{
			name: "bad url",
			cfg:  config.Config{APIKey: "k", BaseURL: "not a url"},
			err:  "invalid configuration",
		},
		{
			name: "bad level",
			cfg:  config.Config{APIKey: "k", BaseURL: config.DefaultBaseURL, LogLevel: "LOUD"},
			err:  "invalid configuration",
		},
		{
			name: "bad format",
			cfg:  config.Config{APIKey: "k", BaseURL: config.DefaultBaseURL, LogFormat: "xml"},
			err:  "invalid configuration",
		},
		{
			name: "negative timeout",
			cfg:  config.Config{APIKey: "k", BaseURL: config.DefaultBaseURL, Timeout: -time.Second},
			err:  "invalid configuration",
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.err == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tc.err)
			}
		})
	}
}
