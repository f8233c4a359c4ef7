package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/market"
	"github.com/rustyeddy/papertrader/sim"
)

// Config is the complete service configuration.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	Log     LogConfig     `json:"log" yaml:"log"`
	Account AccountConfig `json:"account" yaml:"account"`
	Feed    FeedConfig    `json:"feed" yaml:"feed"`
	Engine  EngineConfig  `json:"engine" yaml:"engine"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	API     APIConfig     `json:"api" yaml:"api"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
}

type ServerConfig struct {
	Addr            string `json:"addr" yaml:"addr"`
	ShutdownTimeout string `json:"shutdown_timeout" yaml:"shutdown_timeout"` // e.g. "10s"
}

type LogConfig struct {
	Level    string `json:"level" yaml:"level"`
	Encoding string `json:"encoding" yaml:"encoding"` // "json" or "console"
}

// AccountConfig holds the defaults for newly opened accounts.
type AccountConfig struct {
	Balance  float64 `json:"balance" yaml:"balance"`
	Currency string  `json:"currency" yaml:"currency"`
	Leverage int     `json:"leverage" yaml:"leverage"`
}

type FeedConfig struct {
	Variation    float64 `json:"variation" yaml:"variation"`
	QuoteTimeout string  `json:"quote_timeout" yaml:"quote_timeout"`
}

type EngineConfig struct {
	// TriggerInterval is how often stop-loss/take-profit levels are swept.
	// "0" disables the sweeper.
	TriggerInterval string `json:"trigger_interval" yaml:"trigger_interval"`
}

type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "memory", "csv" or "sqlite"
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
}

type APIConfig struct {
	HistoryLimit   int    `json:"history_limit" yaml:"history_limit"`
	StreamInterval string `json:"stream_interval" yaml:"stream_interval"`
}

type MetricsConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// MinStreamInterval is the fastest the quote stream may push.
const MinStreamInterval = 100 * time.Millisecond

// Default returns a configuration with sensible defaults.
func Default() *Config {
	d := sim.DefaultAccountDefaults()
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: "10s",
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "json",
		},
		Account: AccountConfig{
			Balance:  d.Balance,
			Currency: d.Currency,
			Leverage: d.Leverage,
		},
		Feed: FeedConfig{
			Variation:    market.DefaultVariation,
			QuoteTimeout: "2s",
		},
		Engine: EngineConfig{
			TriggerInterval: "1s",
		},
		Journal: JournalConfig{
			Type: journal.TypeMemory,
		},
		API: APIConfig{
			HistoryLimit:   10,
			StreamInterval: "1s",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// LoadFromFile reads a YAML or JSON file over the defaults, so a file only
// needs the keys it changes.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if isJSON(path) {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes JSON for .json paths and YAML otherwise.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if d, err := parseDuration("server.shutdown_timeout", c.Server.ShutdownTimeout); err != nil {
		return err
	} else if d <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Encoding != "json" && c.Log.Encoding != "console" {
		return fmt.Errorf("log.encoding must be 'json' or 'console'")
	}

	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if c.Account.Balance <= 0 {
		return fmt.Errorf("account.balance must be positive")
	}
	if c.Account.Leverage < 1 {
		return fmt.Errorf("account.leverage must be at least 1")
	}

	if c.Feed.Variation < 0 || c.Feed.Variation >= 0.5 {
		return fmt.Errorf("feed.variation must be in [0, 0.5)")
	}
	if d, err := parseDuration("feed.quote_timeout", c.Feed.QuoteTimeout); err != nil {
		return err
	} else if d <= 0 {
		return fmt.Errorf("feed.quote_timeout must be positive")
	}

	if d, err := parseDuration("engine.trigger_interval", c.Engine.TriggerInterval); err != nil {
		return err
	} else if d < 0 {
		return fmt.Errorf("engine.trigger_interval must not be negative")
	}

	switch c.Journal.Type {
	case journal.TypeMemory:
	case journal.TypeCSV:
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case journal.TypeSQLite:
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'memory', 'csv' or 'sqlite'")
	}

	if c.API.HistoryLimit < 0 {
		return fmt.Errorf("api.history_limit must not be negative")
	}
	if d, err := parseDuration("api.stream_interval", c.API.StreamInterval); err != nil {
		return err
	} else if d < MinStreamInterval {
		return fmt.Errorf("api.stream_interval must be at least %s", MinStreamInterval)
	}
	return nil
}

func parseDuration(field, s string) (time.Duration, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}

// Durations below are only meaningful after Validate has passed.

func (c *Config) ShutdownTimeout() time.Duration {
	d, _ := parseDuration("", c.Server.ShutdownTimeout)
	return d
}

func (c *Config) QuoteTimeout() time.Duration {
	d, _ := parseDuration("", c.Feed.QuoteTimeout)
	return d
}

func (c *Config) TriggerInterval() time.Duration {
	d, _ := parseDuration("", c.Engine.TriggerInterval)
	return d
}

func (c *Config) StreamInterval() time.Duration {
	d, _ := parseDuration("", c.API.StreamInterval)
	return d
}

func (c *Config) AccountDefaults() sim.AccountDefaults {
	return sim.AccountDefaults{
		Balance:  c.Account.Balance,
		Currency: c.Account.Currency,
		Leverage: c.Account.Leverage,
	}
}

func (c *Config) JournalOptions() journal.Options {
	return journal.Options{
		Type:       c.Journal.Type,
		DBPath:     c.Journal.DBPath,
		TradesFile: c.Journal.TradesFile,
		EquityFile: c.Journal.EquityFile,
	}
}
