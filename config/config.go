package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Solwatch   SolwatchConfig   `yaml:"solwatch"`
	API        APIConfig        `yaml:"api"`
	Aggregator AggregatorConfig `yaml:"aggregator"`
	Dashboard  DashboardConfig  `yaml:"dashboard"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type SolwatchConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// APIConfig describes the trading backend this service polls. All data access
// goes through this one HTTP API.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

type AggregatorConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	// ManualRefreshPerMinute bounds user-initiated refreshes; scheduled
	// cycles are never limited.
	ManualRefreshPerMinute int `yaml:"manual_refresh_per_minute"`
	ManualRefreshBurst     int `yaml:"manual_refresh_burst"`
}

type DashboardConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Address         string        `yaml:"address"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	NoticeHistory   int           `yaml:"notice_history"`
	CycleHistory    int           `yaml:"cycle_history"`
}

type MetricsConfig struct {
	Prometheus PrometheusConfig `yaml:"prometheus"`
	CloudWatch CloudWatchConfig `yaml:"cloudwatch"`
}

type PrometheusConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

type CloudWatchConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Region    string `yaml:"region"`
	Namespace string `yaml:"namespace"`
	Dashboard string `yaml:"dashboard"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Config{
		API: APIConfig{
			Timeout:   10 * time.Second,
			UserAgent: "solwatch/1.0",
		},
		Aggregator: AggregatorConfig{
			RefreshInterval:        30 * time.Second,
			ManualRefreshPerMinute: 12,
			ManualRefreshBurst:     3,
		},
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override deployment-specific settings from environment variables
	if v := os.Getenv("SOLWATCH_API_URL"); v != "" {
		config.API.BaseURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("SOLWATCH_DASHBOARD_ADDR"); v != "" {
		config.Dashboard.Address = strings.TrimSpace(v)
	}
	if config.Metrics.CloudWatch.Enabled {
		if v := os.Getenv("AWS_REGION"); v != "" {
			config.Metrics.CloudWatch.Region = strings.TrimSpace(v)
		}
	}

	config.API.BaseURL = strings.TrimRight(strings.TrimSpace(config.API.BaseURL), "/")

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Solwatch.Name == "" {
		return fmt.Errorf("solwatch.name is required")
	}

	if cfg.Solwatch.Version == "" {
		return fmt.Errorf("solwatch.version is required")
	}

	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if !isValidBaseURL(cfg.API.BaseURL) {
		return fmt.Errorf("api.base_url '%s' is invalid", cfg.API.BaseURL)
	}

	if cfg.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be greater than 0")
	}

	if cfg.Aggregator.RefreshInterval <= 0 {
		return fmt.Errorf("aggregator.refresh_interval must be greater than 0")
	}
	if cfg.Aggregator.ManualRefreshPerMinute <= 0 {
		return fmt.Errorf("aggregator.manual_refresh_per_minute must be greater than 0")
	}
	if cfg.Aggregator.ManualRefreshBurst <= 0 {
		return fmt.Errorf("aggregator.manual_refresh_burst must be greater than 0")
	}

	if cfg.Metrics.Prometheus.Enabled && cfg.Metrics.Prometheus.Address == "" {
		return fmt.Errorf("metrics.prometheus.address is required when prometheus is enabled")
	}

	return nil
}

func isValidBaseURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}
