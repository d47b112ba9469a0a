package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration. Values resolve in three
// layers: built-in defaults, then an optional YAML file, then environment
// variables. Later layers win, which is why no field carries an envconfig
// default tag.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Shell     ShellConfig     `yaml:"shell"`
	Logging   LogConfig       `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `yaml:"port" envconfig:"PORT"`
	Host string `yaml:"host" envconfig:"HOST"`
	// AllowedOrigins restricts CORS; empty allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
}

// ShellConfig holds session subsystem configuration.
type ShellConfig struct {
	ShellPath   string        `yaml:"shell_path" envconfig:"SHELL_PATH"`
	CommandWait time.Duration `yaml:"command_wait" envconfig:"COMMAND_WAIT"`
	ConfirmWait time.Duration `yaml:"confirm_wait" envconfig:"CONFIRM_WAIT"`
	CloseGrace  time.Duration `yaml:"close_grace" envconfig:"CLOSE_GRACE"`
	MaxSessions int           `yaml:"max_sessions" envconfig:"MAX_SESSIONS"`
	BufferMax   int           `yaml:"buffer_max" envconfig:"BUFFER_MAX"`
	IdleExpiry  time.Duration `yaml:"idle_expiry" envconfig:"IDLE_EXPIRY"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `yaml:"level" envconfig:"LOG_LEVEL"`
	Development bool   `yaml:"development" envconfig:"LOG_DEV"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `yaml:"requests_per_second" envconfig:"RATE_LIMIT_RPS"`
	Burst             int  `yaml:"burst" envconfig:"RATE_LIMIT_BURST"`
	Enabled           bool `yaml:"enabled" envconfig:"RATE_LIMIT_ENABLED"`
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Shell: ShellConfig{
			CommandWait: 3 * time.Second,
			ConfirmWait: 30 * time.Second,
			CloseGrace:  5 * time.Second,
			MaxSessions: 5,
			BufferMax:   4096,
			IdleExpiry:  5 * time.Minute,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}

// Load resolves configuration. path names an optional YAML file; empty
// means environment-only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads configuration or falls back to defaults.
func LoadOrDefault(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		return Default()
	}
	return cfg
}
