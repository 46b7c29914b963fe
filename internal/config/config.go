package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/caarlos0/env/v6"
)

// LLMProvider selects the completion backend.
type LLMProvider string

const (
	ProviderGroq   LLMProvider = "groq"
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

// HistoryBackend selects where conversation turns are kept.
type HistoryBackend string

const (
	BackendMongo  HistoryBackend = "mongo"
	BackendSQLite HistoryBackend = "sqlite"
	BackendFile   HistoryBackend = "file"
	BackendMemory HistoryBackend = "memory"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8000"`

	// LLM settings
	LLMProvider      LLMProvider `env:"LLM_PROVIDER" envDefault:"groq"`
	LLMModel         string      `env:"LLM_MODEL" envDefault:"openai/gpt-oss-20b"`
	GroqAPIKey       string      `env:"GROQ_API_KEY"`
	OpenAIAPIKey     string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string      `env:"OPENAI_BASE_URL"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`

	// History storage
	HistoryBackend  HistoryBackend `env:"HISTORY_BACKEND" envDefault:"mongo"`
	MongoURI        string         `env:"MONGO_URI"`
	MongoDatabase   string         `env:"MONGO_DATABASE" envDefault:"chat"`
	MongoCollection string         `env:"MONGO_COLLECTION" envDefault:"users"`
	SQLitePath      string         `env:"SQLITE_PATH" envDefault:"data/history.db"`
	HistoryFilePath string         `env:"HISTORY_FILE_PATH" envDefault:"data/history.jsonl"`

	// Optional Telegram front end
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
}

// Load parses the environment and checks that the selected provider and
// backend have their credentials.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LLMProvider = LLMProvider(strings.ToLower(string(cfg.LLMProvider)))
	cfg.HistoryBackend = HistoryBackend(strings.ToLower(string(cfg.HistoryBackend)))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderGroq:
		if c.GroqAPIKey == "" {
			return fmt.Errorf("GROQ_API_KEY is required for provider %q", c.LLMProvider)
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for provider %q", c.LLMProvider)
		}
	case ProviderYandex:
		if c.YandexOAuthToken == "" || c.YandexFolderID == "" {
			return fmt.Errorf("YANDEX_OAUTH_TOKEN and YANDEX_FOLDER_ID are required for provider %q", c.LLMProvider)
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.LLMModel == "" {
		return fmt.Errorf("LLM_MODEL must not be empty")
	}

	switch c.HistoryBackend {
	case BackendMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for history backend %q", c.HistoryBackend)
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for history backend %q", c.HistoryBackend)
		}
	case BackendFile:
		if c.HistoryFilePath == "" {
			return fmt.Errorf("HISTORY_FILE_PATH is required for history backend %q", c.HistoryBackend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown HISTORY_BACKEND %q", c.HistoryBackend)
	}
	return nil
}

// New loads the configuration and exits the process if it is unusable.
func New() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
