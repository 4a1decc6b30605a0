package config

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"

	"StockOS/internal/importer"
)

// Config holds all application configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Quote     QuoteConfig     `yaml:"quote"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Portfolio PortfolioConfig `yaml:"portfolio"`
	Database  DatabaseConfig  `yaml:"database"`
	Import    ImportConfig    `yaml:"import"`
	Proxy     string          `yaml:"proxy" env:"HTTPS_PROXY"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
	ChatID   string `yaml:"chat_id" env:"TELEGRAM_CHAT_ID"`
}

type QuoteConfig struct {
	BaseURL string        `yaml:"base_url" env:"QUOTE_BASE_URL"`
	Timeout time.Duration `yaml:"timeout" env:"QUOTE_TIMEOUT"`
}

type ScheduleConfig struct {
	SyncCron    string `yaml:"sync_cron" env:"CRON_SYNC"`
	SummaryCron string `yaml:"summary_cron" env:"CRON_SUMMARY"`
}

type PortfolioConfig struct {
	StateFile   string  `yaml:"state_file" env:"STATE_FILE"`
	InitialCash float64 `yaml:"initial_cash" env:"INITIAL_CASH"`
}

type DatabaseConfig struct {
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`
}

// ImportConfig extends the header synonym table. Keys are field names
// (name, code, quantity, cost, current, industry).
type ImportConfig struct {
	Synonyms map[string][]string `yaml:"synonyms"`
}

// Default returns the configuration used for keys that are neither in
// the file nor in the environment.
func Default() *Config {
	return &Config{
		Quote: QuoteConfig{Timeout: 10 * time.Second},
		Schedule: ScheduleConfig{
			// every 5 minutes during A-share trading hours
			SyncCron:    "0 */5 9-15 * * 1-5",
			SummaryCron: "0 30 15 * * 1-5",
		},
		Portfolio: PortfolioConfig{
			StateFile:   "data/portfolio.json",
			InitialCash: 250000,
		},
		Database: DatabaseConfig{SQLitePath: "data/stockos.db"},
	}
}

// Load starts from Default, then applies a YAML file and environment
// variable overrides. A missing file is not an error. Keys that are set
// keep their value even when it is zero or empty.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks field values that do not depend on the command.
func (c *Config) Validate() error {
	if c.Portfolio.InitialCash < 0 {
		return fmt.Errorf("portfolio.initial_cash must not be negative")
	}
	if c.Quote.Timeout < 0 {
		return fmt.Errorf("quote.timeout must not be negative")
	}
	for name := range c.Import.Synonyms {
		if !slices.Contains(importer.Fields, importer.Field(name)) {
			return fmt.Errorf("import.synonyms: unknown field %q", name)
		}
	}
	return nil
}

// ValidateTelegram checks the settings needed to run the bot.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}

// Synonyms returns the default header synonyms extended by the config.
func (c *Config) Synonyms() importer.Synonyms {
	return importer.DefaultSynonyms.Merge(c.Import.Synonyms)
}
