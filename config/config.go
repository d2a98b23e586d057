// Package config loads the service configuration from an optional YAML file
// with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration decodes YAML strings like "200ms" or "5s" into a time.Duration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full service configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Output OutputConfig `yaml:"output"`
	Render RenderConfig `yaml:"render"`
	LLM    LLMConfig    `yaml:"llm"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// OutputConfig configures where rendered charts land.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// RenderConfig configures the retry policy applied to rendering nodes.
type RenderConfig struct {
	MaxRetries int      `yaml:"max_retries"`
	RetryWait  Duration `yaml:"retry_wait"`
}

// LLMConfig configures the optional prompt-to-spec generator. Prompt tasks
// are rejected when no API key is configured.
type LLMConfig struct {
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	Temperature float32 `yaml:"temperature"`
}

// LogConfig configures the zap backend.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file and no overrides are
// present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080", ShutdownTimeout: Duration(10 * time.Second)},
		Output: OutputConfig{Dir: "charts-out"},
		Render: RenderConfig{MaxRetries: 3, RetryWait: Duration(200 * time.Millisecond)},
		LLM: LLMConfig{
			Model:       "gpt-4o",
			Temperature: 0.2,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads the YAML file at path (skipped when empty) over the defaults,
// then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.Server.Addr = getEnvOrDefault("CHARTFLOW_ADDR", cfg.Server.Addr)
	cfg.Output.Dir = getEnvOrDefault("CHARTFLOW_OUTPUT_DIR", cfg.Output.Dir)
	cfg.LLM.APIKey = getEnvOrDefault("OPENAI_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.Model = getEnvOrDefault("OPENAI_MODEL", cfg.LLM.Model)
	cfg.LLM.BaseURL = getEnvOrDefault("OPENAI_BASE_URL", cfg.LLM.BaseURL)
	cfg.Log.Level = getEnvOrDefault("CHARTFLOW_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnvOrDefault("CHARTFLOW_LOG_FORMAT", cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	if c.Render.MaxRetries < 1 {
		return fmt.Errorf("render.max_retries must be at least 1, got %d", c.Render.MaxRetries)
	}
	if c.Render.RetryWait < 0 {
		return fmt.Errorf("render.retry_wait cannot be negative")
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
