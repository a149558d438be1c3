package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"GridironMarket/internal/calculator"
	"GridironMarket/internal/model"
)

// Config holds all application configuration.
type Config struct {
	API struct {
		Source      string `yaml:"source"` // "api" or "mock"
		BaseURL     string `yaml:"base_url"`
		Token       string `yaml:"token"`
		HistoryPath string `yaml:"history_path"`
		MockSeed    int64  `yaml:"mock_seed"`
	} `yaml:"api"`
	Market struct {
		DefaultTeam  string `yaml:"default_team"`
		DefaultRange string `yaml:"default_range"`
	} `yaml:"market"`
	Polling struct {
		TeamsCron     string `yaml:"teams_cron"`
		PortfolioCron string `yaml:"portfolio_cron"`
	} `yaml:"polling"`
	Chart struct {
		PaddingRatio  float64 `yaml:"padding_ratio"`
		MinPadding    float64 `yaml:"min_padding"`
		DefaultDomain struct {
			Min float64 `yaml:"min"`
			Max float64 `yaml:"max"`
		} `yaml:"default_domain"`
	} `yaml:"chart"`
	Cache struct {
		RedisAddr        string        `yaml:"redis_addr"`
		RedisPassword    string        `yaml:"redis_password"`
		RedisDB          int           `yaml:"redis_db"`
		KeyPrefix        string        `yaml:"key_prefix"`
		HistoryStaleTime time.Duration `yaml:"history_stale_time"`
	} `yaml:"cache"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Portfolio struct {
		Source         string  `yaml:"source"` // "ledger" or "api"
		LedgerFile     string  `yaml:"ledger_file"`
		InitialDeposit float64 `yaml:"initial_deposit"`
	} `yaml:"portfolio"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
}

// envOverrides lists the environment variables that override the file.
// Unset variables leave the file value alone.
type envOverrides struct {
	APISource      string   `envconfig:"GRIDIRON_API_SOURCE"`
	APIBaseURL     string   `envconfig:"GRIDIRON_API_URL"`
	APIToken       string   `envconfig:"GRIDIRON_API_TOKEN"`
	TelegramToken  string   `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID string   `envconfig:"TELEGRAM_CHAT_ID"`
	RedisAddr      string   `envconfig:"REDIS_ADDR"`
	RedisPassword  string   `envconfig:"REDIS_PASSWORD"`
	SQLitePath     string   `envconfig:"SQLITE_PATH"`
	HTTPAddr       string   `envconfig:"HTTP_ADDR"`
	Proxy          string   `envconfig:"HTTPS_PROXY"`
	TeamsCron      string   `envconfig:"CRON_TEAMS"`
	InitialDeposit *float64 `envconfig:"INITIAL_DEPOSIT"`
}

// Load reads .env (if present) and the YAML file, then applies environment
// variable overrides and defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	cfg.applyEnv(env)
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv(env envOverrides) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.API.Source, env.APISource)
	set(&c.API.BaseURL, env.APIBaseURL)
	set(&c.API.Token, env.APIToken)
	set(&c.Telegram.BotToken, env.TelegramToken)
	set(&c.Telegram.ChatID, env.TelegramChatID)
	set(&c.Cache.RedisAddr, env.RedisAddr)
	set(&c.Cache.RedisPassword, env.RedisPassword)
	set(&c.Database.SQLitePath, env.SQLitePath)
	set(&c.HTTP.Addr, env.HTTPAddr)
	set(&c.Proxy, env.Proxy)
	set(&c.Polling.TeamsCron, env.TeamsCron)
	if env.InitialDeposit != nil {
		c.Portfolio.InitialDeposit = *env.InitialDeposit
	}
}

func (c *Config) applyDefaults() {
	if c.API.Source == "" {
		c.API.Source = "mock"
	}
	if c.API.HistoryPath == "" {
		c.API.HistoryPath = "/trades/portfolio/history"
	}
	if c.API.MockSeed == 0 {
		c.API.MockSeed = 2025
	}
	if c.Market.DefaultRange == "" {
		c.Market.DefaultRange = string(calculator.Range1D)
	}
	if c.Polling.TeamsCron == "" {
		c.Polling.TeamsCron = "@every 5s"
	}
	if c.Polling.PortfolioCron == "" {
		c.Polling.PortfolioCron = "@every 5s"
	}
	if c.Chart.PaddingRatio == 0 {
		c.Chart.PaddingRatio = 0.1
	}
	if c.Chart.MinPadding == 0 {
		c.Chart.MinPadding = 1
	}
	if c.Chart.DefaultDomain.Min == 0 && c.Chart.DefaultDomain.Max == 0 {
		c.Chart.DefaultDomain.Max = calculator.DefaultDomain.Max
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "gridiron:"
	}
	if c.Cache.HistoryStaleTime == 0 {
		c.Cache.HistoryStaleTime = 15 * time.Second
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/gridiron_market.db"
	}
	if c.Portfolio.Source == "" {
		c.Portfolio.Source = "ledger"
	}
	if c.Portfolio.LedgerFile == "" {
		c.Portfolio.LedgerFile = "data/ledger.json"
	}
	if c.Portfolio.InitialDeposit == 0 {
		c.Portfolio.InitialDeposit = 10000
	}
}

// DomainOptions returns the chart padding settings.
func (c *Config) DomainOptions() calculator.DomainOptions {
	return calculator.DomainOptions{
		PaddingRatio: c.Chart.PaddingRatio,
		MinPadding:   c.Chart.MinPadding,
		Default:      model.Domain{Min: c.Chart.DefaultDomain.Min, Max: c.Chart.DefaultDomain.Max},
	}
}

// TelegramEnabled reports whether both bot token and chat id are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.API.Source {
	case "mock":
	case "api":
		if c.API.BaseURL == "" {
			return fmt.Errorf("api.base_url is required when api.source is \"api\"")
		}
	default:
		return fmt.Errorf("api.source must be \"api\" or \"mock\", got %q", c.API.Source)
	}
	if c.Portfolio.Source != "ledger" && c.Portfolio.Source != "api" {
		return fmt.Errorf("portfolio.source must be \"ledger\" or \"api\", got %q", c.Portfolio.Source)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if _, err := calculator.ParseRange(c.Market.DefaultRange); err != nil {
		return fmt.Errorf("market.default_range: %w", err)
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for name, spec := range map[string]string{
		"polling.teams_cron":     c.Polling.TeamsCron,
		"polling.portfolio_cron": c.Polling.PortfolioCron,
	} {
		if _, err := parser.Parse(spec); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if c.Chart.PaddingRatio < 0 || c.Chart.MinPadding < 0 {
		return fmt.Errorf("chart padding must not be negative")
	}
	if c.Chart.DefaultDomain.Min >= c.Chart.DefaultDomain.Max {
		return fmt.Errorf("chart.default_domain.min must be below max")
	}
	if c.Portfolio.InitialDeposit < 0 {
		return fmt.Errorf("portfolio.initial_deposit must not be negative")
	}
	return nil
}
