package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. The instrument universe and
// scan cadence live in an optional YAML file; secrets and per-deploy
// overrides come from the environment.
type Config struct {
	Symbols        []string `yaml:"symbols"`
	TimeframeShort string   `yaml:"timeframe_short"`
	TimeframeLong  string   `yaml:"timeframe_long"`
	CandleLimit    int      `yaml:"candle_limit"`
	ScanInterval   string   `yaml:"scan_interval"` // e.g. "5m"
	PauseSeconds   float64  `yaml:"pause_seconds"` // pause between instruments
	RequestTimeout int      `yaml:"request_timeout"` // seconds
	RequestsPerSec int      `yaml:"requests_per_sec"`
	LogLevel       string   `yaml:"log_level"`

	OpenAIAPIKey     string `yaml:"-"`
	TelegramBotToken string `yaml:"-"`
	TelegramChatID   int64  `yaml:"-"`
	Narrate          bool   `yaml:"-"`
}

// Load reads config from an optional YAML file, then applies environment
// variable overrides (a .env file is honored when present), then defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on actual environment variables")
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

	// Environment overrides
	if v := os.Getenv("SYMBOLS"); v != "" {
		cfg.Symbols = splitSymbols(v)
	}
	if v := os.Getenv("TIMEFRAME_SHORT"); v != "" {
		cfg.TimeframeShort = v
	}
	if v := os.Getenv("TIMEFRAME_LONG"); v != "" {
		cfg.TimeframeLong = v
	}
	cfg.CandleLimit = getEnvIntWithDefault("CANDLE_LIMIT", cfg.CandleLimit)
	if v := os.Getenv("SCAN_INTERVAL"); v != "" {
		cfg.ScanInterval = v
	}
	cfg.PauseSeconds = getEnvFloatWithDefault("PAUSE_SECONDS", cfg.PauseSeconds)
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.RequestsPerSec = getEnvIntWithDefault("REQUESTS_PER_SEC", cfg.RequestsPerSec)
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.TelegramChatID = id
		}
	}
	cfg.Narrate = getEnvBoolWithDefault("NARRATE", false)

	// Defaults
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"}
	}
	if cfg.TimeframeShort == "" {
		cfg.TimeframeShort = "1h"
	}
	if cfg.TimeframeLong == "" {
		cfg.TimeframeLong = "4h"
	}
	if cfg.CandleLimit == 0 {
		cfg.CandleLimit = 300
	}
	if cfg.ScanInterval == "" {
		cfg.ScanInterval = "5m"
	}
	if cfg.PauseSeconds == 0 {
		cfg.PauseSeconds = 1.5
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 30
	}
	if cfg.RequestsPerSec == 0 {
		cfg.RequestsPerSec = 5
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// Validate checks the parts that would only fail later at runtime.
func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("symbols must not be empty")
	}
	if _, err := time.ParseDuration(c.ScanInterval); err != nil {
		return fmt.Errorf("scan_interval %q: %w", c.ScanInterval, err)
	}
	if c.PauseSeconds < 0 {
		return fmt.Errorf("pause_seconds must not be negative")
	}
	if c.TelegramBotToken != "" && c.TelegramChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}
	return nil
}

// Pause returns the inter-instrument pause as a duration.
func (c *Config) Pause() time.Duration {
	return time.Duration(c.PauseSeconds * float64(time.Second))
}

func splitSymbols(v string) []string {
	parts := strings.Split(v, ",")
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			symbols = append(symbols, strings.ToUpper(s))
		}
	}
	return symbols
}

// Helper functions for environment variable handling
func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
