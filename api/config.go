package api

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	// DefaultMaxFileSize is the default maximum PDF upload size (10MB)
	DefaultMaxFileSize = 10 * 1024 * 1024

	// DefaultMaxLogoSize is the default maximum logo upload size (5MB)
	DefaultMaxLogoSize = 5 * 1024 * 1024

	// DefaultPort is the default server port
	DefaultPort = "8080"

	// DefaultTempDir is the default temporary directory
	DefaultTempDir = "./temp"

	// DefaultBackgroundRemoverTimeout is in seconds
	DefaultBackgroundRemoverTimeout = 60
)

// Config holds application configuration
type Config struct {
	Port        string `toml:"port"`
	MaxFileSize int64  `toml:"max_file_size"`
	MaxLogoSize int64  `toml:"max_logo_size"`
	TempDir     string `toml:"temp_dir"`
	LogLevel    string `toml:"log_level"`

	BackgroundRemover BackgroundRemoverConfig `toml:"background_remover"`
}

// BackgroundRemoverConfig selects the background removal backend. With no
// Command, the built-in color key remover is used.
type BackgroundRemoverConfig struct {
	Command        string `toml:"command"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Tolerance      int    `toml:"tolerance"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() *Config {
	return &Config{
		Port:        DefaultPort,
		MaxFileSize: DefaultMaxFileSize,
		MaxLogoSize: DefaultMaxLogoSize,
		TempDir:     DefaultTempDir,
		LogLevel:    "info",
		BackgroundRemover: BackgroundRemoverConfig{
			TimeoutSeconds: DefaultBackgroundRemoverTimeout,
			Tolerance:      -1,
		},
	}
}

// LoadConfig layers defaults, an optional TOML file and environment variables,
// in that order.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	config.Port = getEnv("PORT", config.Port)
	config.MaxFileSize = getEnvInt64("MAX_FILE_SIZE", config.MaxFileSize)
	config.MaxLogoSize = getEnvInt64("MAX_LOGO_SIZE", config.MaxLogoSize)
	config.TempDir = getEnv("TEMP_DIR", config.TempDir)
	config.LogLevel = getEnv("LOG_LEVEL", config.LogLevel)
	config.BackgroundRemover.Command = getEnv("BG_REMOVER_COMMAND", config.BackgroundRemover.Command)
	config.BackgroundRemover.TimeoutSeconds = int(getEnvInt64("BG_REMOVER_TIMEOUT", int64(config.BackgroundRemover.TimeoutSeconds)))
	config.BackgroundRemover.Tolerance = int(getEnvInt64("BG_TOLERANCE", int64(config.BackgroundRemover.Tolerance)))

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("port must not be empty")
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be positive, got %d", c.MaxFileSize)
	}
	if c.MaxLogoSize <= 0 {
		return fmt.Errorf("max logo size must be positive, got %d", c.MaxLogoSize)
	}
	if c.BackgroundRemover.Tolerance > 255 {
		return fmt.Errorf("background tolerance must be at most 255, got %d", c.BackgroundRemover.Tolerance)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
