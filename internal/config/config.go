// Package config loads application settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port int
	Env  string

	// Database connection settings
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// AI enhancement provider (OpenAI-compatible). Empty APIKey disables
	// the provider and every enhancement uses the deterministic fallback.
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	EnhanceTimeout   time.Duration
	EnhanceQueueSize int

	// APIKeys maps a caller name (sent in x-call-from) to its bearer key.
	// Parsed from TODOAPP_API_KEYS as "name=key,name2=key2".
	APIKeys map[string]string
}

func Load() Config {
	return Config{
		Port:       getenvInt("PORT", 8080),
		Env:        getenv("APP_ENV", "development"),
		DBHost:     getenv("TODOAPP_DB_HOST", "localhost"),
		DBPort:     getenv("TODOAPP_DB_PORT", "5432"),
		DBUser:     getenv("TODOAPP_DB_USERNAME", "postgres"),
		DBPassword: getenv("TODOAPP_DB_PASSWORD", "postgres"),
		DBName:     getenv("TODOAPP_DB_DATABASE", "todoapp"),

		OpenAIAPIKey:  getenv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getenv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   getenv("OPENAI_MODEL", "gpt-4o-mini"),

		EnhanceTimeout:   time.Duration(getenvInt("ENHANCE_TIMEOUT_SECONDS", 30)) * time.Second,
		EnhanceQueueSize: getenvInt("ENHANCE_QUEUE_SIZE", 64),

		APIKeys: parseKeyMap(getenv("TODOAPP_API_KEYS", "")),
	}
}

// Production reports whether the app runs in production mode. Controls the
// Secure flag on the session cookie.
func (c Config) Production() bool {
	return c.Env == "production"
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseKeyMap(raw string) map[string]string {
	keys := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, key, ok := strings.Cut(pair, "=")
		if !ok || name == "" || key == "" {
			continue
		}
		keys[strings.TrimSpace(name)] = strings.TrimSpace(key)
	}
	return keys
}
