package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the runtime configuration for the roster service. Values
// come from an optional YAML file with environment variables taking
// precedence.
type Config struct {
	HTTPPort  int    `yaml:"http_port"`
	SQLiteDSN string `yaml:"sqlite_dsn"`

	// Timezone is the canonical IANA zone routines are expanded in.
	Timezone    string `yaml:"timezone"`
	HorizonDays int    `yaml:"horizon_days"`

	// Cron expressions for the background jobs.
	MaterializeSpec    string `yaml:"materialize_spec"`
	UrgencyRefreshSpec string `yaml:"urgency_refresh_spec"`

	LogLevel   string `yaml:"log_level"`
	LogConsole bool   `yaml:"log_console"`
}

const defaultConfigPath = "opsroster.yaml"

// Load reads the YAML file at ROSTER_CONFIG_PATH (or opsroster.yaml when
// unset), applies ROSTER_* environment overrides, fills defaults, and
// validates the result. A missing config file is not an error.
func Load() (Config, error) {
	var cfg Config

	path := defaultConfigPath
	if envPath := strings.TrimSpace(os.Getenv("ROSTER_CONFIG_PATH")); envPath != "" {
		path = envPath
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("ROSTER_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "ROSTER_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}
	if dsn := strings.TrimSpace(os.Getenv("ROSTER_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}
	if tz := strings.TrimSpace(os.Getenv("ROSTER_TIMEZONE")); tz != "" {
		cfg.Timezone = tz
	}
	if horizonValue := strings.TrimSpace(os.Getenv("ROSTER_HORIZON_DAYS")); horizonValue != "" {
		horizon, err := strconv.Atoi(horizonValue)
		if err != nil || horizon <= 0 {
			invalid = append(invalid, "ROSTER_HORIZON_DAYS")
		} else {
			cfg.HorizonDays = horizon
		}
	}
	if spec := strings.TrimSpace(os.Getenv("ROSTER_MATERIALIZE_SPEC")); spec != "" {
		cfg.MaterializeSpec = spec
	}
	if spec := strings.TrimSpace(os.Getenv("ROSTER_URGENCY_REFRESH_SPEC")); spec != "" {
		cfg.UrgencyRefreshSpec = spec
	}
	if level := strings.TrimSpace(os.Getenv("ROSTER_LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}
	if consoleValue := strings.TrimSpace(os.Getenv("ROSTER_LOG_CONSOLE")); consoleValue != "" {
		console, err := strconv.ParseBool(consoleValue)
		if err != nil {
			invalid = append(invalid, "ROSTER_LOG_CONSOLE")
		} else {
			cfg.LogConsole = console
		}
	}

	if cfg.HTTPPort == 0 {
		cfg.HTTPPort = 8080
	}
	if cfg.SQLiteDSN == "" {
		cfg.SQLiteDSN = "file:opsroster.db?_foreign_keys=on"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}
	if cfg.HorizonDays == 0 {
		cfg.HorizonDays = 14
	}
	if cfg.MaterializeSpec == "" {
		cfg.MaterializeSpec = "0 2 * * *"
	}
	if cfg.UrgencyRefreshSpec == "" {
		cfg.UrgencyRefreshSpec = "*/15 * * * *"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.HTTPPort <= 0 {
		invalid = append(invalid, "http_port")
	}
	if cfg.HorizonDays <= 0 {
		invalid = append(invalid, "horizon_days")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		invalid = append(invalid, "timezone")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid configuration values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
