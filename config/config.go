package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rustyeddy/quantlab/backtest"
	"github.com/rustyeddy/quantlab/montecarlo"
	"github.com/rustyeddy/quantlab/risk"
	"github.com/rustyeddy/quantlab/stress"
	"gopkg.in/yaml.v3"
)

// Config holds settings for every quantlab entry point.
type Config struct {
	Backtest   backtest.Config  `json:"backtest" yaml:"backtest"`
	Stress     StressConfig     `json:"stress" yaml:"stress"`
	MonteCarlo MonteCarloConfig `json:"montecarlo" yaml:"montecarlo"`
	Report     ReportConfig     `json:"report" yaml:"report"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
}

// StressConfig selects scenarios. With no custom scenarios the built-in
// catalog is used; IncludeDefaults adds the catalog in front of custom ones.
type StressConfig struct {
	InitialCapital  float64           `json:"initial_capital,omitempty" yaml:"initial_capital,omitempty"` // 0: use backtest.initial_capital
	IncludeDefaults bool              `json:"include_defaults" yaml:"include_defaults"`
	Scenarios       []stress.Scenario `json:"scenarios,omitempty" yaml:"scenarios,omitempty"`
	Parallelism     int               `json:"parallelism,omitempty" yaml:"parallelism,omitempty"`
}

type MonteCarloConfig struct {
	InitialCapital float64 `json:"initial_capital,omitempty" yaml:"initial_capital,omitempty"` // 0: use backtest.initial_capital
	Simulations    int     `json:"simulations" yaml:"simulations"`
	Days           int     `json:"days" yaml:"days"`
	Mode           string  `json:"mode" yaml:"mode"` // "bootstrap" or "parametric"
	Seed           uint64  `json:"seed" yaml:"seed"`
	KeepPaths      bool    `json:"keep_paths,omitempty" yaml:"keep_paths,omitempty"`
	Parallelism    int     `json:"parallelism,omitempty" yaml:"parallelism,omitempty"`
}

// ReportConfig holds the risk report thresholds.
type ReportConfig struct {
	StopLossFraction   float64 `json:"stop_loss_fraction" yaml:"stop_loss_fraction"`
	TakeProfitFraction float64 `json:"take_profit_fraction,omitempty" yaml:"take_profit_fraction,omitempty"`
	Trailing           bool    `json:"trailing_stop,omitempty" yaml:"trailing_stop,omitempty"`
	ApproachFraction   float64 `json:"approach_fraction" yaml:"approach_fraction"`
	Confidence         float64 `json:"confidence" yaml:"confidence"`
	SortinoTarget      float64 `json:"sortino_target,omitempty" yaml:"sortino_target,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a YAML or JSON file. Fields absent
// from the file keep their Default values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Backtest.Validate(); err != nil {
		return fmt.Errorf("backtest: %w", err)
	}
	if c.Stress.InitialCapital < 0 {
		return fmt.Errorf("stress.initial_capital must not be negative")
	}
	seen := map[string]bool{}
	for _, sc := range c.Scenarios() {
		if err := sc.Validate(); err != nil {
			return fmt.Errorf("stress: %w", err)
		}
		if seen[sc.Name] {
			return fmt.Errorf("stress: duplicate scenario %q", sc.Name)
		}
		seen[sc.Name] = true
	}
	if _, err := c.ToMonteCarloParams(); err != nil {
		return fmt.Errorf("montecarlo: %w", err)
	}
	if err := c.ToPolicy().Validate(); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	switch c.Journal.Type {
	case "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	return nil
}

// ToBacktestConfig returns the simulator configuration.
func (c *Config) ToBacktestConfig() backtest.Config {
	return c.Backtest
}

func (c *Config) capital(override float64) float64 {
	if override > 0 {
		return override
	}
	return c.Backtest.InitialCapital
}

// StressCapital is the capital stress paths start from.
func (c *Config) StressCapital() float64 {
	return c.capital(c.Stress.InitialCapital)
}

// Scenarios returns the scenarios to run; nil means the built-in catalog.
func (c *Config) Scenarios() []stress.Scenario {
	if len(c.Stress.Scenarios) == 0 {
		if c.Stress.IncludeDefaults {
			return stress.DefaultScenarios()
		}
		return nil
	}
	var out []stress.Scenario
	if c.Stress.IncludeDefaults {
		out = stress.DefaultScenarios()
	}
	return append(out, c.Stress.Scenarios...)
}

func (c *Config) ToMonteCarloParams() (montecarlo.Params, error) {
	mode, err := montecarlo.ParseMode(c.MonteCarlo.Mode)
	if err != nil {
		return montecarlo.Params{}, err
	}
	p := montecarlo.Params{
		InitialCapital: c.capital(c.MonteCarlo.InitialCapital),
		Simulations:    c.MonteCarlo.Simulations,
		Days:           c.MonteCarlo.Days,
		Mode:           mode,
		Seed:           c.MonteCarlo.Seed,
		KeepPaths:      c.MonteCarlo.KeepPaths,
	}
	return p, p.Validate()
}

// ToPolicy returns the risk report policy. The risk-free rate comes from
// the backtest section.
func (c *Config) ToPolicy() risk.Policy {
	return risk.Policy{
		StopLossFraction:   c.Report.StopLossFraction,
		TakeProfitFraction: c.Report.TakeProfitFraction,
		Trailing:           c.Report.Trailing,
		ApproachFraction:   c.Report.ApproachFraction,
		Confidence:         c.Report.Confidence,
		RiskFreeRate:       c.Backtest.RiskFreeRate,
		SortinoTarget:      c.Report.SortinoTarget,
	}
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	p := risk.DefaultPolicy()
	return &Config{
		Backtest: backtest.DefaultConfig(),
		MonteCarlo: MonteCarloConfig{
			Simulations: 10_000,
			Days:        252,
			Mode:        montecarlo.Bootstrap.String(),
			Seed:        42,
		},
		Report: ReportConfig{
			StopLossFraction: p.StopLossFraction,
			ApproachFraction: p.ApproachFraction,
			Confidence:       p.Confidence,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./quantlab.db",
		},
	}
}
