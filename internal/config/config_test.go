package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"StockOS/internal/importer"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Schedule.SyncCron != "0 */5 9-15 * * 1-5" {
		t.Errorf("unexpected sync cron %q", cfg.Schedule.SyncCron)
	}
	if cfg.Portfolio.InitialCash != 250000 || cfg.Portfolio.StateFile != "data/portfolio.json" {
		t.Errorf("unexpected portfolio defaults: %+v", cfg.Portfolio)
	}
	if cfg.Quote.Timeout != 10*time.Second {
		t.Errorf("unexpected timeout %v", cfg.Quote.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if err := cfg.ValidateTelegram(); err == nil {
		t.Error("expected telegram validation to fail without token")
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: file-token
  chat_id: "42"
quote:
  base_url: http://localhost:9999
  timeout: 3s
portfolio:
  state_file: /tmp/p.json
import:
  synonyms:
    cost: ["Einstand"]
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("CRON_SYNC", "@every 1m")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Telegram.BotToken != "env-token" || cfg.Telegram.ChatID != "42" {
		t.Errorf("unexpected telegram config: %+v", cfg.Telegram)
	}
	if cfg.Quote.BaseURL != "http://localhost:9999" || cfg.Quote.Timeout != 3*time.Second {
		t.Errorf("unexpected quote config: %+v", cfg.Quote)
	}
	if cfg.Schedule.SyncCron != "@every 1m" {
		t.Errorf("env override not applied: %q", cfg.Schedule.SyncCron)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	syn := cfg.Synonyms()
	if got := syn[importer.FieldCost]; got[len(got)-1] != "Einstand" {
		t.Errorf("expected extra synonym appended, got %v", got)
	}
}

func TestLoad_ZeroValuesAreKept(t *testing.T) {
	cfg, err := Load(writeConfig(t, "portfolio:\n  initial_cash: 0\ndatabase:\n  sqlite_path: \"\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Portfolio.InitialCash != 0 {
		t.Errorf("expected configured zero cash, got %v", cfg.Portfolio.InitialCash)
	}
	if cfg.Database.SQLitePath != "" {
		t.Errorf("expected sqlite to be disabled, got %q", cfg.Database.SQLitePath)
	}
	if cfg.Portfolio.StateFile != "data/portfolio.json" {
		t.Errorf("unset keys keep defaults, got %q", cfg.Portfolio.StateFile)
	}

	t.Setenv("INITIAL_CASH", "0")
	cfg, err = Load(writeConfig(t, "portfolio:\n  initial_cash: 5000\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Portfolio.InitialCash != 0 {
		t.Errorf("expected env zero to override file, got %v", cfg.Portfolio.InitialCash)
	}
}

func TestValidate_UnknownSynonymField(t *testing.T) {
	cfg, err := Load(writeConfig(t, "import:\n  synonyms:\n    price: [\"Kurs\"]\n"))
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected unknown field to be rejected")
	}
}
