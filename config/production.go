// Package config provides configuration management and environment variable handling for the application
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ProductionConfig holds all configuration for production environment
type ProductionConfig struct {
	Server     ServerConfig     `json:"server"`
	Storage    StorageConfig    `json:"storage"`
	Logging    LoggingConfig    `json:"logging"`
	Deployment DeploymentConfig `json:"deployment"`
}

type ServerConfig struct {
	Host               string        `json:"host"`
	Port               int           `json:"port"`
	ShutdownTimeout    time.Duration `json:"shutdown_timeout"`
	EnableMetrics      bool          `json:"enable_metrics"`
	RateLimitPerMinute int           `json:"rate_limit_per_minute"`
	CORSOrigins        []string      `json:"cors_origins"`
}

// StorageConfig selects where identifier sets persist. Provider is one of
// redis, postgres, or memory.
type StorageConfig struct {
	Provider string `json:"provider"`

	RedisURL    string `json:"redis_url"`
	RedisDB     int    `json:"redis_db"`
	RedisPrefix string `json:"redis_prefix"`

	PostgresHost     string        `json:"postgres_host"`
	PostgresPort     int           `json:"postgres_port"`
	PostgresName     string        `json:"postgres_name"`
	PostgresUser     string        `json:"postgres_user"`
	PostgresPassword string        `json:"postgres_password"`
	PostgresSSLMode  string        `json:"postgres_ssl_mode"`
	MaxOpenConns     int           `json:"max_open_conns"`
	MaxIdleConns     int           `json:"max_idle_conns"`
	ConnMaxLifetime  time.Duration `json:"conn_max_lifetime"`
}

type LoggingConfig struct {
	Output     string `json:"output"` // stdout, file, both
	FilePath   string `json:"file_path"`
	MaxSize    int    `json:"max_size"` // MB
	MaxBackups int    `json:"max_backups"`
	MaxAge     int    `json:"max_age"` // days
	Compress   bool   `json:"compress"`
}

type DeploymentConfig struct {
	Environment string `json:"environment"`
	Version     string `json:"version"`
}

// DSN builds the Postgres connection string for the storage provider.
func (s StorageConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		s.PostgresHost, s.PostgresPort, s.PostgresUser, s.PostgresPassword, s.PostgresName, s.PostgresSSLMode)
}

// LoadProductionConfig loads and validates configuration from environment variables
func LoadProductionConfig() (*ProductionConfig, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &ProductionConfig{
		Server: ServerConfig{
			Host:               getEnvString("SERVER_HOST", "0.0.0.0"),
			Port:               getEnvInt("SERVER_PORT", 8080),
			ShutdownTimeout:    getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			EnableMetrics:      getEnvBool("SERVER_ENABLE_METRICS", true),
			RateLimitPerMinute: getEnvInt("SERVER_RATE_LIMIT_PER_MINUTE", 1000),
			CORSOrigins:        getEnvStringSlice("SERVER_CORS_ORIGINS", []string{"http://localhost:3000"}),
		},
		Storage: StorageConfig{
			Provider:         getEnvString("STORAGE_PROVIDER", "memory"),
			RedisURL:         getEnvString("STORAGE_REDIS_URL", "redis://localhost:6379"),
			RedisDB:          getEnvInt("STORAGE_REDIS_DB", 0),
			RedisPrefix:      getEnvString("STORAGE_REDIS_PREFIX", "onboarding"),
			PostgresHost:     getEnvString("STORAGE_POSTGRES_HOST", "localhost"),
			PostgresPort:     getEnvInt("STORAGE_POSTGRES_PORT", 5432),
			PostgresName:     getEnvString("STORAGE_POSTGRES_NAME", "onboarding"),
			PostgresUser:     getEnvString("STORAGE_POSTGRES_USER", "onboarding"),
			PostgresPassword: getEnvString("STORAGE_POSTGRES_PASSWORD", ""),
			PostgresSSLMode:  getEnvString("STORAGE_POSTGRES_SSL_MODE", "require"),
			MaxOpenConns:     getEnvInt("STORAGE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:     getEnvInt("STORAGE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:  getEnvDuration("STORAGE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Logging: LoggingConfig{
			Output:     getEnvString("LOG_OUTPUT", "stdout"),
			FilePath:   getEnvString("LOG_FILE_PATH", "/var/log/onboarding/app.log"),
			MaxSize:    getEnvInt("LOG_MAX_SIZE", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAge:     getEnvInt("LOG_MAX_AGE", 30),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
		Deployment: DeploymentConfig{
			Environment: getEnvString("APP_ENV", "production"),
			Version:     getEnvString("APP_VERSION", "dev"),
		},
	}

	if err := ValidateProductionConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ValidateProductionConfig validates the production configuration
func ValidateProductionConfig(cfg *ProductionConfig) error {
	var errors []string

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errors = append(errors, "server port must be between 1 and 65535")
	}

	switch cfg.Storage.Provider {
	case "redis":
		if cfg.Storage.RedisURL == "" {
			errors = append(errors, "redis URL is required for the redis storage provider")
		}
	case "postgres":
		if cfg.Storage.PostgresHost == "" {
			errors = append(errors, "postgres host is required for the postgres storage provider")
		}
		if cfg.Storage.PostgresName == "" {
			errors = append(errors, "postgres database name is required for the postgres storage provider")
		}
	case "memory":
	default:
		errors = append(errors, "storage provider must be one of redis, postgres, memory")
	}

	switch cfg.Logging.Output {
	case "stdout", "file", "both":
	default:
		errors = append(errors, "log output must be one of stdout, file, both")
	}
	if cfg.Logging.Output != "stdout" && cfg.Logging.FilePath == "" {
		errors = append(errors, "log file path is required when logging to a file")
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// loadEnvFile loads environment variables from .env file if it exists
func loadEnvFile() error {
	envFile := ".env"

	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		return nil
	}

	file, err := os.Open(envFile)
	if err != nil {
		return fmt.Errorf("failed to open .env file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.Contains(line, "=") {
			parts := strings.SplitN(line, "=", 2)
			if len(parts) == 2 {
				key := strings.TrimSpace(parts[0])
				value := strings.TrimSpace(parts[1])

				if (strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`)) ||
					(strings.HasPrefix(value, `'`) && strings.HasSuffix(value, `'`)) {
					value = value[1 : len(value)-1]
				}

				// Environment variables already set take precedence
				if os.Getenv(key) == "" {
					os.Setenv(key, value)
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading .env file: %w", err)
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
