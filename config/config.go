// Package config loads the service and client settings.
// Values are layered: defaults, then an optional YAML file, then environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"weatherforecast/logger"
)

// Environment toggles diagnostic verbosity only
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// ParseEnvironment accepts "development"/"dev" and "production"/"prod"
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "development", "dev":
		return Development, nil
	case "production", "prod":
		return Production, nil
	default:
		return "", fmt.Errorf("unknown ENVIRONMENT_MODE %q", s)
	}
}

// Common holds settings shared by both processes
type Common struct {
	ListenPort  int         `yaml:"listen_port"`
	Environment Environment `yaml:"environment_mode"`
	LogLevel    string      `yaml:"log_level"`
}

// Verbose reports whether diagnostic detail should be exposed
func (c Common) Verbose() bool {
	return c.Environment == Development
}

// Level resolves the log level: LogLevel if set, else DEBUG in development and INFO otherwise
func (c Common) Level() logger.Level {
	if c.LogLevel != "" {
		if lvl, err := logger.ParseLevel(c.LogLevel); err == nil {
			return lvl
		}
	}
	if c.Verbose() {
		return logger.LevelDebug
	}
	return logger.LevelInfo
}

// Addr is the listen address on all interfaces
func (c Common) Addr() string {
	return fmt.Sprintf(":%d", c.ListenPort)
}

// validate also normalizes aliases such as "dev" loaded from a file
func (c *Common) validate() error {
	if c.ListenPort < 1 || c.ListenPort > 65535 {
		return fmt.Errorf("LISTEN_PORT %d out of range", c.ListenPort)
	}
	env, err := ParseEnvironment(string(c.Environment))
	if err != nil {
		return err
	}
	c.Environment = env
	if c.LogLevel != "" {
		if _, err := logger.ParseLevel(c.LogLevel); err != nil {
			return err
		}
	}
	return nil
}

// ServiceConfig configures the Forecast Service
type ServiceConfig struct {
	Common       `yaml:",inline"`
	ForecastDays int `yaml:"forecast_days"`
}

// ClientConfig configures the Forecast Client
type ClientConfig struct {
	Common         `yaml:",inline"`
	ServiceBaseURL string        `yaml:"service_base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	FetchRetries   int           `yaml:"fetch_retries"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps"`
	RateLimitBurst int           `yaml:"rate_limit_burst"`
	ProbeInterval  time.Duration `yaml:"probe_interval"`
}

const (
	DefaultListenPort     = 80
	DefaultForecastDays   = 5
	MaxForecastDays       = 14
	DefaultServiceBaseURL = "http://forecast-service"
	DefaultRequestTimeout = 3 * time.Second
	DefaultFetchRetries   = 1
	MaxFetchRetries       = 3
	DefaultRateLimitBurst = 5
	DefaultProbeInterval  = 30 * time.Second
	RetryPause            = 250 * time.Millisecond
)

func defaultCommon() Common {
	return Common{
		ListenPort:  DefaultListenPort,
		Environment: Production,
	}
}

// DefaultService returns the service configuration with no overrides applied
func DefaultService() *ServiceConfig {
	return &ServiceConfig{
		Common:       defaultCommon(),
		ForecastDays: DefaultForecastDays,
	}
}

// DefaultClient returns the client configuration with no overrides applied
func DefaultClient() *ClientConfig {
	return &ClientConfig{
		Common:         defaultCommon(),
		ServiceBaseURL: DefaultServiceBaseURL,
		RequestTimeout: DefaultRequestTimeout,
		FetchRetries:   DefaultFetchRetries,
		RateLimitBurst: DefaultRateLimitBurst,
		ProbeInterval:  DefaultProbeInterval,
	}
}

// FetchBudget is the overall deadline for one page's fetch: every attempt
// plus the pauses between retries
func (c *ClientConfig) FetchBudget() time.Duration {
	attempts := time.Duration(c.FetchRetries + 1)
	return c.RequestTimeout*attempts + time.Duration(c.FetchRetries)*RetryPause
}

// LoadService builds the service configuration. path may be empty.
func LoadService(path string) (*ServiceConfig, error) {
	cfg := DefaultService()
	if err := loadYamlFile(path, cfg); err != nil {
		return nil, err
	}
	if err := loadServiceEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadClient builds the client configuration. path may be empty.
func LoadClient(path string) (*ClientConfig, error) {
	cfg := DefaultClient()
	if err := loadYamlFile(path, cfg); err != nil {
		return nil, err
	}
	if err := loadClientEnv(cfg); err != nil {
		return nil, err
	}
	if cfg.FetchRetries < 0 {
		cfg.FetchRetries = 0
	}
	if cfg.FetchRetries > MaxFetchRetries {
		cfg.FetchRetries = MaxFetchRetries
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the service configuration
func (c *ServiceConfig) Validate() error {
	if err := c.Common.validate(); err != nil {
		return err
	}
	if c.ForecastDays < 1 || c.ForecastDays > MaxForecastDays {
		return fmt.Errorf("FORECAST_DAYS %d out of range 1..%d", c.ForecastDays, MaxForecastDays)
	}
	return nil
}

// Validate checks the client configuration
func (c *ClientConfig) Validate() error {
	if err := c.Common.validate(); err != nil {
		return err
	}
	u, err := url.Parse(c.ServiceBaseURL)
	if err != nil {
		return fmt.Errorf("SERVICE_BASE_URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("SERVICE_BASE_URL %q must be an absolute http(s) URL", c.ServiceBaseURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative")
	}
	if c.ProbeInterval < 0 {
		return fmt.Errorf("PROBE_INTERVAL must not be negative")
	}
	return nil
}

func loadYamlFile(path string, out interface{}) error {
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func loadCommonEnv(c *Common) error {
	if v := os.Getenv("LISTEN_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LISTEN_PORT: %w", err)
		}
		c.ListenPort = port
	}
	if v := os.Getenv("ENVIRONMENT_MODE"); v != "" {
		env, err := ParseEnvironment(v)
		if err != nil {
			return err
		}
		c.Environment = env
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

func loadServiceEnv(c *ServiceConfig) error {
	if err := loadCommonEnv(&c.Common); err != nil {
		return err
	}
	if v := os.Getenv("FORECAST_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FORECAST_DAYS: %w", err)
		}
		c.ForecastDays = days
	}
	return nil
}

func loadClientEnv(c *ClientConfig) error {
	if err := loadCommonEnv(&c.Common); err != nil {
		return err
	}
	if v := os.Getenv("SERVICE_BASE_URL"); v != "" {
		c.ServiceBaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("REQUEST_TIMEOUT: %w", err)
		}
		c.RequestTimeout = d
	}
	if v := os.Getenv("FETCH_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FETCH_RETRIES: %w", err)
		}
		c.FetchRetries = n
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		c.RateLimitRPS = rps
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		c.RateLimitBurst = n
	}
	if v := os.Getenv("PROBE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PROBE_INTERVAL: %w", err)
		}
		c.ProbeInterval = d
	}
	return nil
}
