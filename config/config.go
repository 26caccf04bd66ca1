// Package config loads the cfo configuration: a YAML file with ${VAR}
// expansion, then CFO_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/coingecko"
	"github.com/etnz/cryptofolio/logging"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "cryptofolio.yaml"

// MinInterval is the shortest auto-update interval.
const MinInterval = time.Minute

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CFO_"

// Config is the whole cfo configuration.
type Config struct {
	Database   DatabaseConfig         `yaml:"database" envPrefix:"DB_"`
	Prices     coingecko.Config       `yaml:"prices" envPrefix:"PRICES_"`
	Alerts     cryptofolio.Thresholds `yaml:"alerts" envPrefix:"ALERTS_"`
	AutoUpdate AutoUpdateConfig       `yaml:"auto_update" envPrefix:"AUTOUPDATE_"`
	Web        WebConfig              `yaml:"web" envPrefix:"WEB_"`
	Logging    logging.Config         `yaml:"logging" envPrefix:"LOG_"`
	Assist     AssistConfig           `yaml:"assist" envPrefix:"ASSIST_"`

	// File is the file the configuration was read from, empty for the defaults.
	File string `yaml:"-"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"PATH"`
}

// AutoUpdateConfig drives the periodic analysis.
type AutoUpdateConfig struct {
	Interval   time.Duration `yaml:"interval" env:"INTERVAL"`
	MaxUpdates int           `yaml:"max_updates" env:"MAX_UPDATES"` // 0 is unlimited
	ByWallet   bool          `yaml:"by_wallet" env:"BY_WALLET"`
}

// WebConfig configures the dashboard.
type WebConfig struct {
	Addr    string `yaml:"addr" env:"ADDR"`
	Release bool   `yaml:"release" env:"RELEASE"`
}

// AssistConfig configures the assistant.
type AssistConfig struct {
	Model  string `yaml:"model" env:"MODEL"`
	APIKey string `yaml:"api_key" env:"API_KEY"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "crypto_portfolio.db"},
		Prices:   coingecko.DefaultConfig(),
		Alerts:   cryptofolio.DefaultThresholds,
		AutoUpdate: AutoUpdateConfig{
			Interval: 15 * time.Minute,
		},
		Web:     WebConfig{Addr: "localhost:8501"},
		Logging: logging.DefaultConfig,
		Assist:  AssistConfig{Model: "gemini-2.5-flash"},
	}
}

// Load reads the configuration at path on top of the defaults.
//
// A .env file in the working directory is loaded first. A missing file is
// not an error: the defaults are returned with an empty File.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		cfg.File = path
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that would fail later.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Database.Path) == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Prices.BaseURL == "" {
		errs = append(errs, errors.New("prices.base_url is required"))
	}
	if c.Prices.Currency == "" {
		errs = append(errs, errors.New("prices.currency is required"))
	}
	if c.Prices.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("prices.rate_limit must not be negative, got %v", c.Prices.RateLimit))
	}
	if c.Alerts.TakeProfit <= 0 {
		errs = append(errs, fmt.Errorf("alerts.take_profit must be positive, got %v", c.Alerts.TakeProfit))
	}
	if c.Alerts.StopLoss >= 0 {
		errs = append(errs, fmt.Errorf("alerts.stop_loss must be negative, got %v", c.Alerts.StopLoss))
	}
	if c.AutoUpdate.Interval < MinInterval {
		errs = append(errs, fmt.Errorf("auto_update.interval must be at least a minute, got %v", c.AutoUpdate.Interval))
	}
	if c.AutoUpdate.MaxUpdates < 0 {
		errs = append(errs, fmt.Errorf("auto_update.max_updates must not be negative, got %d", c.AutoUpdate.MaxUpdates))
	}
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// YAML returns the effective configuration with the secrets redacted.
func (c *Config) YAML() ([]byte, error) {
	redacted := *c
	if redacted.Prices.APIKey != "" {
		redacted.Prices.APIKey = "***"
	}
	if redacted.Assist.APIKey != "" {
		redacted.Assist.APIKey = "***"
	}
	return yaml.Marshal(&redacted)
}
