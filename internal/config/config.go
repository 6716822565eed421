package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	AppName = "articlebench"

	InferenceAPIOllama = "ollama"
	InferenceAPIOpenAI = "openai"
)

type Config struct {
	OllamaHost            string        `env:"OLLAMA_HOST"            envDefault:"localhost:11434"`
	InferenceAPI          string        `env:"INFERENCE_API"          envDefault:"ollama"`
	OpenAIAPIKey          string        `env:"OPENAI_API_KEY"`
	CacheDir              string        `env:"CACHE_DIR"`
	FetchTimeout          time.Duration `env:"FETCH_TIMEOUT"          envDefault:"10s"`
	FetchInterval         time.Duration `env:"FETCH_INTERVAL"         envDefault:"1s"`
	InferenceTimeout      time.Duration `env:"INFERENCE_TIMEOUT"      envDefault:"300s"`
	UserAgent             string        `env:"USER_AGENT"`
	RestrictionSignatures []string      `env:"RESTRICTION_SIGNATURES" envSeparator:"|"`
	LogLevel              slog.Level    `env:"LOG_LEVEL"              envDefault:"info"`
	TelegramToken         string        `env:"TELEGRAM_TOKEN"`
	TelegramChatID        int64         `env:"TELEGRAM_CHAT_ID"`
}

// Load reads envFile when it exists, then the environment. Variables that
// are already set win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err = godotenv.Load(envFile); err != nil {
				return Config{}, fmt.Errorf("load %s: %w", envFile, err)
			}
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.InferenceAPI = strings.ToLower(strings.TrimSpace(cfg.InferenceAPI))
	cfg.CacheDir = strings.TrimSpace(cfg.CacheDir)
	if cfg.CacheDir == "" {
		cfg.CacheDir = filepath.Join(xdg.CacheHome, AppName)
	}

	if err = cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.InferenceAPI {
	case InferenceAPIOllama, InferenceAPIOpenAI:
	default:
		errs = append(errs, fmt.Errorf("INFERENCE_API must be %q or %q, got %q",
			InferenceAPIOllama, InferenceAPIOpenAI, c.InferenceAPI))
	}

	if c.FetchTimeout <= 0 {
		errs = append(errs, errors.New("FETCH_TIMEOUT must be positive"))
	}

	if c.InferenceTimeout <= 0 {
		errs = append(errs, errors.New("INFERENCE_TIMEOUT must be positive"))
	}

	if c.FetchInterval < 0 {
		errs = append(errs, errors.New("FETCH_INTERVAL must not be negative"))
	}

	return errors.Join(errs...)
}

// TelegramEnabled reports whether both Telegram settings are present.
func (c Config) TelegramEnabled() bool {
	return strings.TrimSpace(c.TelegramToken) != "" && c.TelegramChatID != 0
}

func (c Config) ContentDir() string {
	return filepath.Join(c.CacheDir, "content")
}

func (c Config) SummaryDir() string {
	return filepath.Join(c.CacheDir, "summaries")
}

func (c Config) RestrictionLogPath() string {
	return filepath.Join(c.CacheDir, "restricted.txt")
}
