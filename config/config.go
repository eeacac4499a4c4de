package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// RemovalPolicy controls how a "remove" mention changes an item's
// quantity level. The exact decrement amount is product policy, so it
// is configuration rather than hard-coded behavior.
type RemovalPolicy string

const (
	// RemovalDecrement lowers the quantity by RemovalStep per mention.
	RemovalDecrement RemovalPolicy = "decrement"
	// RemovalClear drops the quantity straight to zero.
	RemovalClear RemovalPolicy = "clear"
)

// Config holds all configuration for the application.
type Config struct {
	ServerHost string `env:"SERVER_HOST" env-default:"0.0.0.0"`
	ServerPort string `env:"SERVER_PORT" env-default:"8080"`

	DBHost     string `env:"DB_HOST" env-default:"localhost"`
	DBPort     string `env:"DB_PORT" env-default:"5432"`
	DBUser     string `env:"DB_USER" env-default:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" env-default:"homecuistot"`
	DBSSLMode  string `env:"DB_SSL_MODE" env-default:"disable"`

	RedisHost     string `env:"REDIS_HOST" env-default:"localhost"`
	RedisPort     string `env:"REDIS_PORT" env-default:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`

	JWTSecret string `env:"JWT_SECRET"`

	// LLM provider (OpenAI-compatible endpoint).
	LLMAPIKey          string `env:"OPENAI_API_KEY"`
	LLMAPIBaseURL      string `env:"OPENAI_API_BASE_URL"`
	LLMChatModel       string `env:"LLM_CHAT_MODEL" env-default:"gpt-4o-mini"`
	LLMTranscribeModel string `env:"LLM_TRANSCRIBE_MODEL" env-default:"whisper-1"`
	LLMTimeoutSeconds  int    `env:"LLM_TIMEOUT_SECONDS" env-default:"25"`

	// Daily quota on LLM-backed endpoints.
	DailyLLMLimit int    `env:"DAILY_LLM_LIMIT" env-default:"100"`
	AdminUserIDs  string `env:"ADMIN_USER_IDS"`

	RemovalPolicy RemovalPolicy `env:"REMOVAL_POLICY" env-default:"decrement"`
	RemovalStep   int           `env:"REMOVAL_STEP" env-default:"1"`

	S3BucketName string `env:"S3_BUCKET_NAME" env-default:"homecuistot-recipe-images"`
	AWSRegion    string `env:"AWS_REGION" env-default:"us-east-1"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the invariants the rest of the application assumes.
func (c *Config) Validate() error {
	if c.DailyLLMLimit < 1 {
		return fmt.Errorf("DAILY_LLM_LIMIT must be positive, got %d", c.DailyLLMLimit)
	}
	if c.RemovalStep < 1 {
		return fmt.Errorf("REMOVAL_STEP must be positive, got %d", c.RemovalStep)
	}
	switch c.RemovalPolicy {
	case RemovalDecrement, RemovalClear:
	default:
		return fmt.Errorf("REMOVAL_POLICY must be %q or %q, got %q", RemovalDecrement, RemovalClear, c.RemovalPolicy)
	}
	if c.LLMTimeoutSeconds < 15 || c.LLMTimeoutSeconds > 30 {
		return fmt.Errorf("LLM_TIMEOUT_SECONDS must be between 15 and 30, got %d", c.LLMTimeoutSeconds)
	}
	return nil
}

// AdminIDs returns the parsed ADMIN_USER_IDS list.
func (c *Config) AdminIDs() []string {
	if c.AdminUserIDs == "" {
		return nil
	}
	parts := strings.Split(c.AdminUserIDs, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}

// DSN builds the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// RedisAddr builds the Redis host:port address.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}
