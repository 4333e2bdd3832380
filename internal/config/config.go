// Package config loads application configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"BoursePulse/internal/analyst"
	"BoursePulse/internal/indicator"
)

// Config holds all application configuration.
type Config struct {
	Exchange struct {
		BaseURL           string  `yaml:"base_url"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
	} `yaml:"exchange"`
	Gemini struct {
		Model             string `yaml:"model"`
		DailyLimit        int    `yaml:"daily_limit"`
		MinuteLimit       int    `yaml:"minute_limit"`
		MaxRetries        int    `yaml:"max_retries"`
		RequestsPerMinute int    `yaml:"requests_per_minute"`
	} `yaml:"gemini"`
	Indicators struct {
		MAWindows            []int   `yaml:"ma_windows"`
		BollingerWindow      int     `yaml:"bollinger_window"`
		BollingerK           float64 `yaml:"bollinger_k"`
		MACDFast             int     `yaml:"macd_fast"`
		MACDSlow             int     `yaml:"macd_slow"`
		MACDSignal           int     `yaml:"macd_signal"`
		RSIPeriod            int     `yaml:"rsi_period"`
		RSIOverbought        float64 `yaml:"rsi_overbought"`
		RSIOversold          float64 `yaml:"rsi_oversold"`
		StochasticK          int     `yaml:"stochastic_k"`
		StochasticD          int     `yaml:"stochastic_d"`
		StochasticOverbought float64 `yaml:"stochastic_overbought"`
		StochasticOversold   float64 `yaml:"stochastic_oversold"`
	} `yaml:"indicators"`
	Pipeline struct {
		Workers             int `yaml:"workers"`
		RunTimeoutMinutes   int `yaml:"run_timeout_minutes"`
		PredictionRetention int `yaml:"prediction_retention_days"`
	} `yaml:"pipeline"`
	Schedule struct {
		DailyCron  string `yaml:"daily_cron"`
		RunOnStart bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
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

	// Environment variable overrides
	if v := os.Getenv("BRVM_BASE_URL"); v != "" {
		cfg.Exchange.BaseURL = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.Gemini.Model = v
	}
	if v := os.Getenv("GEMINI_DAILY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Gemini.DailyLimit = n
		}
	}
	if v := os.Getenv("GEMINI_MINUTE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Gemini.MinuteLimit = n
		}
	}
	if v := os.Getenv("PIPELINE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pipeline.Workers = n
		}
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		cfg.Schedule.RunOnStart = v == "1" || v == "true"
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Exchange.RequestsPerSecond == 0 {
		cfg.Exchange.RequestsPerSecond = 1
	}
	def := indicator.DefaultConfig()
	if len(cfg.Indicators.MAWindows) == 0 {
		cfg.Indicators.MAWindows = def.MAWindows[:]
	}
	if cfg.Indicators.BollingerWindow == 0 {
		cfg.Indicators.BollingerWindow = def.BollingerWindow
	}
	if cfg.Indicators.BollingerK == 0 {
		cfg.Indicators.BollingerK = def.BollingerK
	}
	if cfg.Indicators.MACDFast == 0 {
		cfg.Indicators.MACDFast = def.MACDFast
	}
	if cfg.Indicators.MACDSlow == 0 {
		cfg.Indicators.MACDSlow = def.MACDSlow
	}
	if cfg.Indicators.MACDSignal == 0 {
		cfg.Indicators.MACDSignal = def.MACDSignal
	}
	if cfg.Indicators.RSIPeriod == 0 {
		cfg.Indicators.RSIPeriod = def.RSIPeriod
	}
	if cfg.Indicators.RSIOverbought == 0 {
		cfg.Indicators.RSIOverbought = def.RSIOverbought
	}
	if cfg.Indicators.RSIOversold == 0 {
		cfg.Indicators.RSIOversold = def.RSIOversold
	}
	if cfg.Indicators.StochasticK == 0 {
		cfg.Indicators.StochasticK = def.StochasticK
	}
	if cfg.Indicators.StochasticD == 0 {
		cfg.Indicators.StochasticD = def.StochasticD
	}
	if cfg.Indicators.StochasticOverbought == 0 {
		cfg.Indicators.StochasticOverbought = def.StochasticOverbought
	}
	if cfg.Indicators.StochasticOversold == 0 {
		cfg.Indicators.StochasticOversold = def.StochasticOversold
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-2.0-flash"
	}
	if cfg.Gemini.DailyLimit == 0 {
		cfg.Gemini.DailyLimit = 1500
	}
	if cfg.Gemini.MinuteLimit == 0 {
		cfg.Gemini.MinuteLimit = 15
	}
	if cfg.Gemini.MaxRetries == 0 {
		cfg.Gemini.MaxRetries = 3
	}
	if cfg.Gemini.RequestsPerMinute == 0 {
		cfg.Gemini.RequestsPerMinute = 10
	}
	if cfg.Pipeline.Workers == 0 {
		cfg.Pipeline.Workers = 4
	}
	if cfg.Pipeline.RunTimeoutMinutes == 0 {
		cfg.Pipeline.RunTimeoutMinutes = 90
	}
	if cfg.Pipeline.PredictionRetention == 0 {
		cfg.Pipeline.PredictionRetention = 30
	}
	if cfg.Schedule.DailyCron == "" {
		// After the exchange close, West Africa time.
		cfg.Schedule.DailyCron = "0 0 18 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/boursepulse.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Exchange.RequestsPerSecond <= 0 {
		return fmt.Errorf("exchange.requests_per_second must be positive")
	}
	ind := &c.Indicators
	if len(ind.MAWindows) != 4 {
		return fmt.Errorf("indicators.ma_windows must list exactly 4 windows")
	}
	for i, w := range ind.MAWindows {
		if w <= 0 {
			return fmt.Errorf("indicators.ma_windows[%d] must be positive", i)
		}
		if i > 0 && w <= ind.MAWindows[i-1] {
			return fmt.Errorf("indicators.ma_windows must be strictly ascending")
		}
	}
	if ind.BollingerWindow <= 0 || ind.BollingerK <= 0 {
		return fmt.Errorf("indicators bollinger parameters must be positive")
	}
	if ind.MACDFast <= 0 || ind.MACDSlow <= ind.MACDFast || ind.MACDSignal <= 0 {
		return fmt.Errorf("indicators macd periods must be positive with fast < slow")
	}
	if ind.RSIPeriod <= 0 || ind.RSIOverbought <= ind.RSIOversold {
		return fmt.Errorf("indicators rsi thresholds must satisfy oversold < overbought")
	}
	if ind.StochasticK <= 0 || ind.StochasticD <= 0 ||
		ind.StochasticOverbought <= ind.StochasticOversold {
		return fmt.Errorf("indicators stochastic thresholds must satisfy oversold < overbought")
	}
	if c.Gemini.DailyLimit <= 0 || c.Gemini.MinuteLimit <= 0 {
		return fmt.Errorf("gemini limits must be positive")
	}
	if c.Pipeline.Workers <= 0 {
		return fmt.Errorf("pipeline.workers must be positive")
	}
	if c.Database.SQLitePath == "" {
		return fmt.Errorf("database.sqlite_path is required")
	}
	return nil
}

// IndicatorConfig maps the indicators section onto the engine parameters.
// Call only after Validate.
func (c *Config) IndicatorConfig() indicator.Config {
	ind := c.Indicators
	cfg := indicator.Config{
		BollingerWindow:      ind.BollingerWindow,
		BollingerK:           ind.BollingerK,
		MACDFast:             ind.MACDFast,
		MACDSlow:             ind.MACDSlow,
		MACDSignal:           ind.MACDSignal,
		RSIPeriod:            ind.RSIPeriod,
		RSIOverbought:        ind.RSIOverbought,
		RSIOversold:          ind.RSIOversold,
		StochasticK:          ind.StochasticK,
		StochasticD:          ind.StochasticD,
		StochasticOverbought: ind.StochasticOverbought,
		StochasticOversold:   ind.StochasticOversold,
	}
	copy(cfg.MAWindows[:], ind.MAWindows)
	return cfg
}

// maxEnvKeys caps the GOOGLE_API_KEY_N scan.
const maxEnvKeys = 100

// LoadKeys collects API keys from the GOOGLE_API_KEY_1..GOOGLE_API_KEY_100
// environment variables, stopping at the first gap. A bare GOOGLE_API_KEY is
// accepted as the sole key when the numbered form is absent.
func LoadKeys() ([]analyst.Key, error) {
	var keys []analyst.Key
	for i := 1; i <= maxEnvKeys; i++ {
		name := fmt.Sprintf("GOOGLE_API_KEY_%d", i)
		v := os.Getenv(name)
		if v == "" {
			break
		}
		keys = append(keys, analyst.Key{ID: name, Secret: v})
	}
	if len(keys) == 0 {
		if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
			keys = append(keys, analyst.Key{ID: "GOOGLE_API_KEY", Secret: v})
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no GOOGLE_API_KEY_N environment variables set")
	}
	return keys, nil
}
