package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	// Runtime
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// State
	StateDir     string `mapstructure:"STATE_DIR"`
	DatabasePath string `mapstructure:"DATABASE_PATH"`

	// Tracking
	Sports         []string `mapstructure:"SPORTS"`
	VIPs           []string `mapstructure:"VIPS"`
	StandingsLimit int      `mapstructure:"STANDINGS_LIMIT"`

	// VIPsConfigured records whether VIPS was supplied at all; an explicit
	// empty list and an absent one publish differently.
	VIPsConfigured bool `mapstructure:"-"`

	// Scheduling
	PollCron   string  `mapstructure:"POLL_CRON"`
	RunsPerMin float64 `mapstructure:"RUNS_PER_MINUTE"`

	// Outputs
	WebhookURL string `mapstructure:"WEBHOOK_URL"`
	SheetPath  string `mapstructure:"SHEET_PATH"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// Set defaults
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STATE_DIR", "state")
	viper.SetDefault("DATABASE_PATH", "tracker.db")
	viper.SetDefault("SPORTS", "NFL")
	viper.SetDefault("STANDINGS_LIMIT", 500)
	viper.SetDefault("POLL_CRON", "")
	viper.SetDefault("RUNS_PER_MINUTE", 12.0)
	viper.SetDefault("WEBHOOK_URL", "")
	viper.SetDefault("SHEET_PATH", "")

	// Read from environment. Empty env vars still count as set so VIPS=""
	// reads as a configured empty list.
	viper.AutomaticEnv()
	viper.AllowEmptyEnv(true)

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Parse comma-separated lists
	config.Sports = splitList(viper.GetString("SPORTS"))
	config.VIPs = splitList(viper.GetString("VIPS"))
	config.VIPsConfigured = viper.IsSet("VIPS")

	return &config, nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// HasVIPConfig reports whether a VIP list was supplied at all. An empty list
// and a missing list publish differently.
func (c *Config) HasVIPConfig() bool {
	return c.VIPsConfigured
}
