package config

import (
	"os"
	"path/filepath"
	"testing"

	"BoursePulse/internal/indicator"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Gemini.Model != "gemini-2.0-flash" {
		t.Errorf("default model = %q", cfg.Gemini.Model)
	}
	if cfg.Gemini.DailyLimit != 1500 || cfg.Gemini.MinuteLimit != 15 {
		t.Errorf("default limits = %d/%d", cfg.Gemini.DailyLimit, cfg.Gemini.MinuteLimit)
	}
	if cfg.Pipeline.Workers != 4 {
		t.Errorf("default workers = %d", cfg.Pipeline.Workers)
	}
	if cfg.Pipeline.PredictionRetention != 30 {
		t.Errorf("default retention = %d", cfg.Pipeline.PredictionRetention)
	}
	if cfg.Schedule.DailyCron == "" {
		t.Error("no default cron")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
exchange:
  base_url: http://localhost:8080
gemini:
  daily_limit: 50
pipeline:
  workers: 2
database:
  sqlite_path: /tmp/test.db
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GEMINI_DAILY_LIMIT", "75")
	t.Setenv("RUN_ON_START", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Exchange.BaseURL != "http://localhost:8080" {
		t.Errorf("base url = %q", cfg.Exchange.BaseURL)
	}
	if cfg.Gemini.DailyLimit != 75 {
		t.Errorf("env override lost, daily limit = %d", cfg.Gemini.DailyLimit)
	}
	if cfg.Pipeline.Workers != 2 {
		t.Errorf("workers = %d", cfg.Pipeline.Workers)
	}
	if !cfg.Schedule.RunOnStart {
		t.Error("RUN_ON_START not applied")
	}
	if cfg.Database.SQLitePath != "/tmp/test.db" {
		t.Errorf("sqlite path = %q", cfg.Database.SQLitePath)
	}
}

func TestIndicatorDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := cfg.IndicatorConfig(), indicator.DefaultConfig(); got != want {
		t.Errorf("indicator config from defaults = %+v, want %+v", got, want)
	}
}

func TestIndicatorYAMLOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
indicators:
  ma_windows: [3, 7, 21, 60]
  bollinger_k: 2.5
  rsi_overbought: 75
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	ind := cfg.IndicatorConfig()
	if ind.MAWindows != [4]int{3, 7, 21, 60} {
		t.Errorf("ma windows = %v", ind.MAWindows)
	}
	if ind.BollingerK != 2.5 {
		t.Errorf("bollinger k = %v", ind.BollingerK)
	}
	if ind.RSIOverbought != 75 {
		t.Errorf("rsi overbought = %v", ind.RSIOverbought)
	}
	// Untouched fields keep their defaults.
	if ind.MACDSlow != 26 || ind.RSIOversold != 30 || ind.StochasticK != 14 {
		t.Errorf("defaults lost: %+v", ind)
	}
}

func TestValidateRejectsBadIndicators(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"ma windows wrong count", func(c *Config) { c.Indicators.MAWindows = []int{5, 10, 20} }},
		{"ma windows not ascending", func(c *Config) { c.Indicators.MAWindows = []int{10, 5, 20, 50} }},
		{"macd fast not below slow", func(c *Config) { c.Indicators.MACDFast = 30 }},
		{"rsi thresholds inverted", func(c *Config) { c.Indicators.RSIOverbought = 20 }},
		{"stochastic thresholds inverted", func(c *Config) { c.Indicators.StochasticOversold = 90 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Pipeline.Workers = -1
	if err := cfg.Validate(); err == nil {
		t.Error("negative workers accepted")
	}
}

func TestLoadKeys(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY_1", "aaa")
	t.Setenv("GOOGLE_API_KEY_2", "bbb")
	t.Setenv("GOOGLE_API_KEY_3", "")

	keys, err := LoadKeys()
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 {
		t.Fatalf("got %d keys, want 2", len(keys))
	}
	if keys[0].ID != "GOOGLE_API_KEY_1" || keys[0].Secret != "aaa" {
		t.Errorf("first key = %+v", keys[0])
	}
	if keys[1].Secret != "bbb" {
		t.Errorf("second key = %+v", keys[1])
	}
}

func TestLoadKeysFallsBackToBareKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY_1", "")
	t.Setenv("GOOGLE_API_KEY", "solo")

	keys, err := LoadKeys()
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 || keys[0].Secret != "solo" {
		t.Fatalf("keys = %+v", keys)
	}
}

func TestLoadKeysNoneSet(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY_1", "")

	if _, err := LoadKeys(); err == nil {
		t.Error("expected error with no keys configured")
	}
}
