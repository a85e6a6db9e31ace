// Package config loads the simulation configuration from YAML, applies
// MARKETSIM_* environment overrides, and validates it.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/talgya/marketsim/internal/engine"
)

// Config is the root configuration.
type Config struct {
	Run struct {
		Episodes int   `yaml:"episodes"`
		Seed     int64 `yaml:"seed"` // 0 = fresh entropy each run
	} `yaml:"run"`

	Scenario struct {
		NumAgents       int     `yaml:"num_agents"`
		Horizon         int     `yaml:"horizon"`
		PolicyInterval  int     `yaml:"policy_interval"`
		StockQuantity   int     `yaml:"stock_quantity"`
		TransactionCost float64 `yaml:"transaction_cost"`
		ActionBuckets   int     `yaml:"action_buckets"`
		WarmupDays      int     `yaml:"warmup_days"`
		FundsMean       float64 `yaml:"funds_mean"`
		FundsStdDev     float64 `yaml:"funds_std_dev"`
		CrashEnabled    bool    `yaml:"crash_enabled"`
	} `yaml:"scenario"`

	Rewards struct {
		BaseVolume          float64 `yaml:"base_volume"`
		BaseStd             float64 `yaml:"base_std"`
		LiquidityImportance float64 `yaml:"liquidity_importance"`
	} `yaml:"rewards"`

	Reference struct {
		URL            string  `yaml:"url"` // empty = synthetic series
		SyntheticDays  int     `yaml:"synthetic_days"`
		SyntheticStart float64 `yaml:"synthetic_start"`
		SyntheticVol   float64 `yaml:"synthetic_vol"`
	} `yaml:"reference"`

	Storage struct {
		DBPath string `yaml:"db_path"` // empty = recording disabled
	} `yaml:"storage"`

	API struct {
		Port int `yaml:"port"` // 0 = API disabled
	} `yaml:"api"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Default returns a runnable baseline configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.Run.Episodes = 1
	cfg.Scenario.NumAgents = 10
	cfg.Scenario.Horizon = 200
	cfg.Scenario.PolicyInterval = 3
	cfg.Scenario.StockQuantity = 1000
	cfg.Scenario.TransactionCost = 0.0075
	cfg.Scenario.ActionBuckets = 10
	cfg.Scenario.WarmupDays = 1
	cfg.Scenario.FundsMean = 20000
	cfg.Scenario.FundsStdDev = 5000
	cfg.Scenario.CrashEnabled = true
	cfg.Rewards.BaseVolume = 0
	cfg.Rewards.BaseStd = 5
	cfg.Rewards.LiquidityImportance = 0.5
	cfg.Reference.SyntheticDays = 500
	cfg.Reference.SyntheticStart = 100
	cfg.Reference.SyntheticVol = 0.02
	cfg.Storage.DBPath = "data/marketsim.db"
	cfg.Logging.Level = "info"
	return cfg
}

// Load reads a YAML configuration file over the defaults, then applies
// environment overrides and validates.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Scenario.NumAgents < 1 {
		return fmt.Errorf("num_agents must be positive")
	}
	if c.Scenario.Horizon < 1 {
		return fmt.Errorf("horizon must be positive")
	}
	if c.Scenario.PolicyInterval < 1 {
		return fmt.Errorf("policy_interval must be >= 1")
	}
	if c.Scenario.StockQuantity < 0 {
		return fmt.Errorf("stock_quantity must not be negative")
	}
	if c.Scenario.TransactionCost < 0 || c.Scenario.TransactionCost >= 1 {
		return fmt.Errorf("transaction_cost must be in [0, 1)")
	}
	if c.Scenario.ActionBuckets < 1 {
		return fmt.Errorf("action_buckets must be positive")
	}
	if c.Rewards.LiquidityImportance < 0 || c.Rewards.LiquidityImportance > 1 {
		return fmt.Errorf("liquidity_importance must be in [0, 1]")
	}
	if c.Reference.URL == "" && c.Reference.SyntheticDays < 2 {
		return fmt.Errorf("synthetic_days must be at least 2 to calibrate")
	}
	return nil
}

// Engine maps the scenario and reward sections onto the engine's config.
func (c *Config) Engine() engine.Config {
	return engine.Config{
		NumAgents:           c.Scenario.NumAgents,
		Horizon:             c.Scenario.Horizon,
		PolicyInterval:      c.Scenario.PolicyInterval,
		StockQuantity:       c.Scenario.StockQuantity,
		TransactionCost:     c.Scenario.TransactionCost,
		Buckets:             c.Scenario.ActionBuckets,
		WarmupDays:          c.Scenario.WarmupDays,
		FundsMean:           c.Scenario.FundsMean,
		FundsStdDev:         c.Scenario.FundsStdDev,
		BaseVolume:          c.Rewards.BaseVolume,
		BaseStd:             c.Rewards.BaseStd,
		LiquidityImportance: c.Rewards.LiquidityImportance,
		CrashEnabled:        c.Scenario.CrashEnabled,
	}
}

// overrideWithEnv applies MARKETSIM_* environment overrides for the knobs
// commonly varied between runs without editing the file.
func (c *Config) overrideWithEnv() {
	if v := os.Getenv("MARKETSIM_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Run.Seed = seed
		}
	}
	if v := os.Getenv("MARKETSIM_EPISODES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Run.Episodes = n
		}
	}
	if v := os.Getenv("MARKETSIM_DB_PATH"); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv("MARKETSIM_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.API.Port = port
		}
	}
	if v := os.Getenv("MARKETSIM_REFERENCE_URL"); v != "" {
		c.Reference.URL = v
	}
	if v := os.Getenv("MARKETSIM_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// SlogLevel maps the configured level name onto a slog level string the main
// can parse; unknown names fall back to info.
func (c *Config) SlogLevel() string {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return c.Logging.Level
	default:
		return "info"
	}
}
