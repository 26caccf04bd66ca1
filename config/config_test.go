package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/etnz/cryptofolio"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cryptofolio.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.File != "" {
		t.Errorf("File = %q, want empty for the defaults", cfg.File)
	}
	if cfg.Database.Path != "crypto_portfolio.db" || cfg.AutoUpdate.Interval != 15*time.Minute {
		t.Errorf("Load() = %+v, want the defaults", cfg)
	}
}

func TestLoad_File(t *testing.T) {
	t.Setenv("TEST_CG_KEY", "demo-123")
	path := writeConfig(t, `
database:
  path: /tmp/folio.db
prices:
  api_key: ${TEST_CG_KEY}
  currency: eur
  timeout: 5s
alerts:
  take_profit: 30
  stop_loss: -10
auto_update:
  interval: 5m
  max_updates: 4
logging:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.File != path {
		t.Errorf("File = %q, want %q", cfg.File, path)
	}
	if cfg.Database.Path != "/tmp/folio.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Prices.APIKey != "demo-123" || cfg.Prices.Currency != "eur" || cfg.Prices.Timeout != 5*time.Second {
		t.Errorf("Prices = %+v", cfg.Prices)
	}
	// untouched keys keep their defaults
	if cfg.Prices.BaseURL == "" || cfg.Prices.Retry.MaxAttempts != 3 {
		t.Errorf("Prices defaults lost: %+v", cfg.Prices)
	}
	if cfg.Alerts != (cryptofolio.Thresholds{TakeProfit: 30, StopLoss: -10}) {
		t.Errorf("Alerts = %+v", cfg.Alerts)
	}
	if cfg.AutoUpdate.Interval != 5*time.Minute || cfg.AutoUpdate.MaxUpdates != 4 {
		t.Errorf("AutoUpdate = %+v", cfg.AutoUpdate)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CFO_DB_PATH", "env.db")
	t.Setenv("CFO_ALERTS_TAKE_PROFIT", "50")
	t.Setenv("CFO_PRICES_RETRY_MAX_ATTEMPTS", "7")
	t.Setenv("CFO_AUTOUPDATE_INTERVAL", "2h")
	path := writeConfig(t, "database:\n  path: file.db\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "env.db" {
		t.Errorf("Database.Path = %q, want the env override", cfg.Database.Path)
	}
	if cfg.Alerts.TakeProfit != 50 || cfg.Alerts.StopLoss != -15 {
		t.Errorf("Alerts = %+v", cfg.Alerts)
	}
	if cfg.Prices.Retry.MaxAttempts != 7 {
		t.Errorf("Retry.MaxAttempts = %d, want 7", cfg.Prices.Retry.MaxAttempts)
	}
	if cfg.AutoUpdate.Interval != 2*time.Hour {
		t.Errorf("AutoUpdate.Interval = %v", cfg.AutoUpdate.Interval)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "database: [", "failed to parse"},
		{"stop loss", "alerts:\n  stop_loss: 5\n", "stop_loss"},
		{"interval", "auto_update:\n  interval: 10s\n", "interval"},
		{"log level", "logging:\n  level: chatty\n", "log level"},
		{"empty db", "database:\n  path: \" \"\n", "database.path"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Load() error = %v, want it to mention %q", err, tc.want)
			}
		})
	}
}

func TestYAMLRedactsSecrets(t *testing.T) {
	cfg := Default()
	cfg.Prices.APIKey = "secret"
	out, err := cfg.YAML()
	if err != nil {
		t.Fatalf("YAML() error = %v", err)
	}
	if strings.Contains(string(out), "secret") {
		t.Errorf("YAML() leaks the api key:\n%s", out)
	}
	if cfg.Prices.APIKey != "secret" {
		t.Errorf("YAML() modified the configuration")
	}
}
