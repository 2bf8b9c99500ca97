// Package config loads the tool host configuration file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the tool host configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Limits    LimitsConfig    `yaml:"limits"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Weather   WeatherConfig   `yaml:"weather"`
}

// ServerConfig overrides the identity reported by initialize.
// Empty fields keep the identity of the selected server.
type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// LogConfig controls the stderr logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LimitsConfig bounds request sizes. An omitted limit takes its default;
// an explicit zero disables it.
type LimitsConfig struct {
	MaxParamsBytes int64 `yaml:"max_params_bytes"`
}

// TelemetryConfig enables OpenTelemetry spans and metrics. The toolhost
// binary installs SDK providers that log finished spans at debug level and
// a request summary on exit; library users pass their own providers.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// WeatherConfig configures the weather provider client.
type WeatherConfig struct {
	BaseURL       string          `yaml:"base_url"`
	Timeout       time.Duration   `yaml:"timeout"`
	ForecastHours int             `yaml:"forecast_hours"`
	RateLimit     RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig is a token bucket: Rate tokens per Interval, up to Burst.
// Omitted fields take their defaults; an explicit rate of zero turns
// throttling off.
type RateLimitConfig struct {
	Rate     int           `yaml:"rate"`
	Burst    int           `yaml:"burst"`
	Interval time.Duration `yaml:"interval"`
}

// Defaults.
const (
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultMaxParamsBytes = 1 << 20
	DefaultServiceName    = "toolhost"
	DefaultWeatherURL     = "https://api.open-meteo.com/v1/forecast"
	DefaultWeatherTimeout = 10 * time.Second
	DefaultForecastHours  = 3
	DefaultWeatherRate    = 10
	DefaultWeatherBurst   = 5
)

// Environment variables that override file values.
const (
	EnvLogLevel   = "TOOLHOST_LOG_LEVEL"
	EnvLogFormat  = "TOOLHOST_LOG_FORMAT"
	EnvWeatherURL = "TOOLHOST_WEATHER_BASE_URL"
	EnvTelemetry  = "TOOLHOST_TELEMETRY"
)

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{
		Limits: LimitsConfig{MaxParamsBytes: DefaultMaxParamsBytes},
		Weather: WeatherConfig{
			RateLimit: RateLimitConfig{
				Rate:     DefaultWeatherRate,
				Burst:    DefaultWeatherBurst,
				Interval: time.Second,
			},
		},
	}
	setDefaults(cfg)
	return cfg
}

// Load reads the YAML file at path, expands environment variables in it,
// fills in defaults, applies TOOLHOST_* overrides and validates the result.
// An empty path yields the defaults with overrides applied.
func Load(path string) (*Config, error) {
	// The file is decoded over the defaults so that keys it omits keep
	// their default and keys it sets to zero stay zero.
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	setDefaults(cfg)
	if err := overrideWithEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = DefaultServiceName
	}

	w := &cfg.Weather
	if w.BaseURL == "" {
		w.BaseURL = DefaultWeatherURL
	}
	if w.Timeout == 0 {
		w.Timeout = DefaultWeatherTimeout
	}
	if w.ForecastHours == 0 {
		w.ForecastHours = DefaultForecastHours
	}
}

func overrideWithEnv(cfg *Config) error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv(EnvWeatherURL); v != "" {
		cfg.Weather.BaseURL = v
	}
	if v := os.Getenv(EnvTelemetry); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return &ConfigError{Field: EnvTelemetry, Message: fmt.Sprintf("not a boolean: %q", v)}
		}
		cfg.Telemetry.Enabled = enabled
	}
	return nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, &ConfigError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		add("log.level", "must be one of debug, info, warn, error; got %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		add("log.format", "must be text or json; got %q", c.Log.Format)
	}

	if c.Limits.MaxParamsBytes < 0 {
		add("limits.max_params_bytes", "must not be negative")
	}

	w := c.Weather
	if u, err := url.Parse(w.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("weather.base_url", "must be an absolute http(s) URL; got %q", w.BaseURL)
	}
	if w.Timeout < 0 {
		add("weather.timeout", "must not be negative")
	}
	if w.ForecastHours < 1 || w.ForecastHours > 48 {
		add("weather.forecast_hours", "must be between 1 and 48; got %d", w.ForecastHours)
	}
	if w.RateLimit.Rate < 0 {
		add("weather.rate_limit.rate", "must not be negative")
	}
	if w.RateLimit.Burst < 0 {
		add("weather.rate_limit.burst", "must not be negative")
	}
	if w.RateLimit.Interval < 0 {
		add("weather.rate_limit.interval", "must not be negative")
	}

	return errors.Join(errs...)
}
