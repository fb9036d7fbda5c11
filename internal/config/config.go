// Package config loads and validates the monitor's configuration.
// Precedence: built-in defaults, then the optional YAML file, then
// environment variables with the LSERISK_ prefix. Configuration is read
// once at process start and passed into the pipeline as an explicit struct;
// nothing here is mutated afterwards.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	yaml "gopkg.in/yaml.v2"
)

// Config is the complete application configuration
type Config struct {
	Mode    ModeConfig    `yaml:"mode" envconfig:"MODE"`
	Market  MarketConfig  `yaml:"market" envconfig:"MARKET"`
	Risk    RiskConfig    `yaml:"risk" envconfig:"RISK"`
	Output  OutputConfig  `yaml:"output" envconfig:"OUTPUT"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

// ModeConfig contains the behaviour switches
type ModeConfig struct {
	// Simulated replaces the live Yahoo Finance source with a deterministic
	// generator so demo runs need no network access
	Simulated bool `yaml:"simulated" envconfig:"SIMULATED"`
	// ShowDashboard controls the text dashboard after the alert banner
	ShowDashboard bool `yaml:"show_dashboard" envconfig:"SHOW_DASHBOARD"`
	// Verbose enables debug-level progress logging
	Verbose bool `yaml:"verbose" envconfig:"VERBOSE"`
}

// MarketConfig identifies the tracked instruments and history depth
type MarketConfig struct {
	Tesco        string `yaml:"tesco" envconfig:"TESCO" validate:"required,ticker"`
	BP           string `yaml:"bp" envconfig:"BP" validate:"required,ticker"`
	Index        string `yaml:"index" envconfig:"INDEX" validate:"required,ticker"`
	HistoryYears int    `yaml:"history_years" envconfig:"HISTORY_YEARS" validate:"min=1,max=20"`
	// Seed drives the simulated source; fixed for reproducible demo runs
	Seed int64 `yaml:"seed" envconfig:"SEED"`
}

// RiskConfig contains the rolling-window parameter of the feature pipeline.
// Alerting thresholds are fixed constants of the risk package, not
// configuration.
type RiskConfig struct {
	WindowDays int `yaml:"window_days" envconfig:"WINDOW_DAYS" validate:"min=2,max=250"`
}

// OutputConfig contains persistence and report destinations
type OutputConfig struct {
	DatabasePath string `yaml:"database_path" envconfig:"DATABASE_PATH" validate:"required"`
	ReportDir    string `yaml:"report_dir" envconfig:"REPORT_DIR" validate:"required"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// Default returns the configuration used when neither file nor environment
// overrides a value
func Default() Config {
	return Config{
		Mode: ModeConfig{
			Simulated:     true,
			ShowDashboard: true,
		},
		Market: MarketConfig{
			Tesco:        "TSCO.L",
			BP:           "BP.L",
			Index:        "^FTSE",
			HistoryYears: 5,
			Seed:         42,
		},
		Risk: RiskConfig{
			WindowDays: 30,
		},
		Output: OutputConfig{
			DatabasePath: "liquidity_risk.db",
			ReportDir:    "reports",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/monitor.log",
		},
	}
}

// Symbols returns the equity symbols tracked by the pipeline (the index is
// context only)
func (c *Config) Symbols() []string {
	return []string{c.Market.Tesco, c.Market.BP}
}

// PairSecurity is the identifier used for the combined cross-security
// assessment
func (c *Config) PairSecurity() string {
	return fmt.Sprintf("%s/%s", c.Market.BP, c.Market.Tesco)
}

// HistoryRange returns the fetch window ending now. A 30-day buffer covers
// exchange holidays, matching the reference data engine.
func (c *Config) HistoryRange(now time.Time) (start, end time.Time) {
	end = now
	start = now.AddDate(-c.Market.HistoryYears, 0, -30)
	return start, end
}

// tickerPattern accepts exchange-qualified symbols like TSCO.L and index
// symbols like ^FTSE
var tickerPattern = regexp.MustCompile(`^[\^]?[A-Z0-9]{1,8}(\.[A-Z]{1,4})?$`)

// Load builds the configuration from defaults, the optional YAML file at
// configPath (pass "" to skip) and LSERISK_ environment variables, in
// ascending precedence.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file %s: %w", configPath, err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", configPath, err)
			}
		}
	}

	if err := envconfig.Process("LSERISK", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.RegisterValidation("ticker", isValidTicker); err != nil {
		return fmt.Errorf("register ticker validator: %w", err)
	}

	if err := v.Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			first := errs[0]
			return fmt.Errorf("field %s failed %q validation", first.Namespace(), first.Tag())
		}
		return err
	}

	return nil
}

// isValidTicker validates exchange ticker symbols
func isValidTicker(fl validator.FieldLevel) bool {
	return tickerPattern.MatchString(fl.Field().String())
}
