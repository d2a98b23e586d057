package openai

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds OpenAI-specific configuration settings.
type Config struct {
	APIKey      string  // OpenAI API key
	Model       string  // Default: "gpt-4o"
	Temperature float32 // Default: 0.2
	BaseURL     string  // Default: "https://api.openai.com/v1"
	OrgID       string  // Optional organization ID
	MaxTokens   int     // Maximum tokens in response, 0 = no limit (default)
}

// NewConfigFromEnv creates config from environment variables with sensible
// defaults.
func NewConfigFromEnv() (*Config, error) {
	config := &Config{
		APIKey:      getEnvOrDefault("OPENAI_API_KEY", ""),
		Model:       getEnvOrDefault("OPENAI_MODEL", "gpt-4o"),
		Temperature: getEnvFloatOrDefault("OPENAI_TEMPERATURE", 0.2),
		BaseURL:     getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OrgID:       getEnvOrDefault("OPENAI_ORG_ID", ""),
		MaxTokens:   getEnvIntOrDefault("OPENAI_MAX_TOKENS", 0),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks if the configuration is valid and complete.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	if c.Temperature < 0.0 || c.Temperature > 2.0 {
		return fmt.Errorf("temperature must be between 0.0 and 2.0, got %f", c.Temperature)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("maxTokens cannot be negative, got %d", c.MaxTokens)
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvIntOrDefault(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloatOrDefault(key string, fallback float32) float32 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(parsed)
		}
	}
	return fallback
}
