package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerHost string
	ServerPort string

	// Store configuration
	StoreBackend string // "gorm", "redis" or "memory"
	DBDriver     string // "sqlite" or "postgres"
	SQLitePath   string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBSSLMode    string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// HTTP configuration
	AllowedOrigins []string

	// Debug override: bcrypt hash of the shared secret required by the
	// premium-override endpoint. Empty disables the endpoint.
	DebugSecretHash string

	// Quota policy
	FreeWeeklyLimit   int
	FreeRegenLimit    int
	AnalyzeCooldown   time.Duration
	RegenCooldown     time.Duration
	ScanRetentionDays int

	// Photo archive
	S3Enabled bool
}

// LoadConfig creates a new Config instance from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerHost: envOr("SERVER_HOST", "0.0.0.0"),
		ServerPort: envOr("SERVER_PORT", "8080"),

		StoreBackend: envOr("STORE_BACKEND", "gorm"),
		DBDriver:     envOr("DB_DRIVER", "sqlite"),
		SQLitePath:   envOr("SQLITE_PATH", "snapdish.db"),
		DBHost:       os.Getenv("DB_HOST"),
		DBPort:       envOr("DB_PORT", "5432"),
		DBUser:       os.Getenv("DB_USER"),
		DBPassword:   envOrSecret("DB_PASSWORD"),
		DBName:       os.Getenv("DB_NAME"),
		DBSSLMode:    envOr("DB_SSL_MODE", "disable"),

		RedisHost:     envOr("REDIS_HOST", "localhost"),
		RedisPort:     envOr("REDIS_PORT", "6379"),
		RedisPassword: envOrSecret("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		RedisURL:      os.Getenv("REDIS_URL"),

		DebugSecretHash: envOrSecret("DEBUG_SECRET_HASH"),

		FreeWeeklyLimit:   envInt("FREE_WEEKLY_LIMIT", 4),
		FreeRegenLimit:    envInt("FREE_REGEN_LIMIT", 1),
		AnalyzeCooldown:   time.Duration(envInt("ANALYZE_COOLDOWN_SECONDS", 60)) * time.Second,
		RegenCooldown:     time.Duration(envInt("REGEN_COOLDOWN_SECONDS", 30)) * time.Second,
		ScanRetentionDays: envInt("SCAN_RETENTION_DAYS", 14),

		S3Enabled: os.Getenv("S3_BUCKET_NAME") != "",
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, strings.TrimSpace(o))
		}
	} else {
		cfg.AllowedOrigins = []string{"http://localhost:5173"}
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// PostgresDSN assembles the postgres connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// envOr returns the environment variable value or a default.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envInt parses an integer environment variable, keeping the default on
// absence or parse failure.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// envOrSecret reads KEY, falling back to the file named by KEY_FILE. Used for
// values provided as Docker secrets.
func envOrSecret(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if path := os.Getenv(key + "_FILE"); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			return strings.TrimSpace(string(data))
		}
	}
	return ""
}
