// Package config loads the CLI settings: an optional YAML file, then
// FIELDTREE_* environment overrides. Command-line flags are applied on top by
// the CLI itself.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvConfigFile   = "FIELDTREE_CONFIG_FILE"
	EnvLogLevel     = "FIELDTREE_LOG_LEVEL"
	EnvLogFormat    = "FIELDTREE_LOG_FORMAT"
	EnvAllowHTTP    = "FIELDTREE_ALLOW_HTTP"
	EnvHTTPTimeout  = "FIELDTREE_HTTP_TIMEOUT"
	EnvHistoryLimit = "FIELDTREE_HISTORY_LIMIT"
)

// Log formats understood by Configure.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

const (
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultHistoryLimit = 100
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid value")

// Config holds the settings shared by all commands.
type Config struct {
	LogLevel     string        `yaml:"logLevel"`
	LogFormat    string        `yaml:"logFormat"`
	AllowHTTP    bool          `yaml:"allowHTTP"`
	HTTPTimeout  time.Duration `yaml:"httpTimeout"`
	HistoryLimit int           `yaml:"historyLimit"`
	Renderer     string        `yaml:"renderer"`
	ExportFormat string        `yaml:"exportFormat"`

	filename string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:     logrus.InfoLevel.String(),
		LogFormat:    LogFormatText,
		HTTPTimeout:  DefaultHTTPTimeout,
		HistoryLimit: DefaultHistoryLimit,
		Renderer:     "outline",
		ExportFormat: "native",
	}
}

// Filename is the file the configuration was read from, empty when none
// existed.
func (c Config) Filename() string {
	return c.filename
}

// File returns the config location: $FIELDTREE_CONFIG_FILE when set, else
// fieldtree/config.yaml under the XDG config home.
func File(getenv func(string) string) string {
	if location := strings.TrimSpace(getenv(EnvConfigFile)); location != "" {
		return location
	}
	return filepath.Join(xdg.ConfigHome, "fieldtree", "config.yaml")
}

// Load reads path (or File when empty) over the defaults and applies the
// environment. A missing default file is not an error; a missing explicit
// path is. A nil getenv means os.Getenv.
func Load(path string, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = File(getenv)
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		cfg.filename = path
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if value := strings.TrimSpace(getenv(EnvLogLevel)); value != "" {
		c.LogLevel = value
	}
	if value := strings.TrimSpace(getenv(EnvLogFormat)); value != "" {
		c.LogFormat = value
	}
	if value := strings.TrimSpace(getenv(EnvAllowHTTP)); value != "" {
		allow, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalid, EnvAllowHTTP, value)
		}
		c.AllowHTTP = allow
	}
	if value := strings.TrimSpace(getenv(EnvHTTPTimeout)); value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalid, EnvHTTPTimeout, value)
		}
		c.HTTPTimeout = timeout
	}
	if value := strings.TrimSpace(getenv(EnvHistoryLimit)); value != "" {
		limit, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalid, EnvHistoryLimit, value)
		}
		c.HistoryLimit = limit
	}
	return nil
}

// Validate checks the values a file, the environment or flags may have set.
func (c Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.LogLevel)
	}
	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.LogFormat)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("%w: negative http timeout %s", ErrInvalid, c.HTTPTimeout)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("%w: negative history limit %d", ErrInvalid, c.HistoryLimit)
	}
	return nil
}

// Configure applies the level and format to logger.
func (c Config) Configure(logger *logrus.Logger) error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.LogLevel)
	}
	logger.SetLevel(level)
	if c.LogFormat == LogFormatJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	return nil
}
