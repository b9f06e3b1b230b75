package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported upstream providers
const (
	ProviderOpenRouter = "openrouter"
	ProviderGroq       = "groq"
	ProviderGemini     = "gemini"
)

// Config is the process configuration read from the environment
type Config struct {
	Port  string
	Env   string
	Debug bool

	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
	AppURL      string
	AppTitle    string

	BookContentPath string
	DatabaseURL     string

	RateLimitRPS   float64
	RateLimitBurst int
	AllowedOrigins []string
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// LoadDotEnv loads .env if present. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Load reads configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Env:   strings.ToLower(getEnv("APP_ENV", "development")),
		Debug: getBool("DEBUG", false),

		Provider: strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenRouter)),
		Model:    getEnv("LLM_MODEL", ""),
		BaseURL:  getEnv("LLM_BASE_URL", ""),
		AppURL:   getEnv("APP_URL", ""),
		AppTitle: getEnv("APP_TITLE", "MindPage"),

		BookContentPath: getEnv("BOOK_CONTENT_PATH", ""),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		AllowedOrigins:  splitList(getEnv("ALLOWED_ORIGINS", "")),
	}

	var err error
	if cfg.Timeout, err = getSeconds("LLM_TIMEOUT", 60); err != nil {
		return nil, err
	}
	if cfg.Temperature, err = getFloat("LLM_TEMPERATURE", 0.7); err != nil {
		return nil, err
	}
	if cfg.MaxTokens, err = getInt("LLM_MAX_TOKENS", 0); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = getFloat("RATE_LIMIT_RPS", 100.0/60.0); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", 200); err != nil {
		return nil, err
	}

	var keyVar string
	switch cfg.Provider {
	case ProviderOpenRouter:
		keyVar = "OPENROUTER_API_KEY"
	case ProviderGroq:
		keyVar = "GROQ_API_KEY"
	case ProviderGemini:
		keyVar = "GEMINI_API_KEY"
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.Provider)
	}
	if cfg.APIKey, err = mustEnv(keyVar); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("missing required env %s", key)
	}
	return v, nil
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", key, raw)
	}
	return v, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative number", key, raw)
	}
	return v, nil
}

func getSeconds(key string, defaultSeconds int) (time.Duration, error) {
	n, err := getInt(key, defaultSeconds)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
