package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.yaml")
	cfg, err := Load("", env(map[string]string{EnvConfigFile: missing}))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Empty(t, cfg.Filename())
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.yaml"), env(nil))
	assert.Error(t, err)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
logLevel: debug
allowHTTP: true
httpTimeout: 5s
historyLimit: 10
renderer: markdown
`)

	cfg, err := Load(path, env(map[string]string{
		EnvHistoryLimit: "3",
		EnvLogFormat:    "json",
	}))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, LogFormatJSON, cfg.LogFormat)
	assert.True(t, cfg.AllowHTTP)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 3, cfg.HistoryLimit)
	assert.Equal(t, "markdown", cfg.Renderer)
	assert.Equal(t, "native", cfg.ExportFormat)
	assert.Equal(t, path, cfg.Filename())
}

func TestLoadEnvOnly(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.yaml")
	cfg, err := Load("", env(map[string]string{
		EnvConfigFile:  missing,
		EnvLogLevel:    "warn",
		EnvAllowHTTP:   "true",
		EnvHTTPTimeout: "250ms",
	}))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.AllowHTTP)
	assert.Equal(t, 250*time.Millisecond, cfg.HTTPTimeout)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.yaml")
	cases := map[string]map[string]string{
		"bad bool":     {EnvAllowHTTP: "maybe"},
		"bad duration": {EnvHTTPTimeout: "soon"},
		"bad limit":    {EnvHistoryLimit: "many"},
		"neg limit":    {EnvHistoryLimit: "-1"},
		"bad level":    {EnvLogLevel: "loud"},
		"bad format":   {EnvLogFormat: "xml"},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			values[EnvConfigFile] = missing
			_, err := Load("", env(values))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}

	_, err := Load(writeConfig(t, "logLevel: [nope"), env(nil))
	assert.Error(t, err)
}

func TestFile(t *testing.T) {
	assert.Equal(t, "/tmp/ft.yaml", File(env(map[string]string{EnvConfigFile: "/tmp/ft.yaml"})))
	assert.Equal(t, filepath.Join("fieldtree", "config.yaml"), filepath.Join(filepath.Base(filepath.Dir(File(env(nil)))), "config.yaml"))
}

func TestConfigure(t *testing.T) {
	logger := logrus.New()
	cfg := Default()
	cfg.LogLevel = "debug"
	cfg.LogFormat = LogFormatJSON

	require.NoError(t, cfg.Configure(logger))
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	cfg.LogLevel = "nope"
	assert.ErrorIs(t, cfg.Configure(logger), ErrInvalid)
}
