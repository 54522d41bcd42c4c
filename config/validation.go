package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validStoreBackends = map[string]bool{
	"gorm":   true,
	"redis":  true,
	"memory": true,
}

var validDBDrivers = map[string]bool{
	"sqlite":   true,
	"postgres": true,
}

// ValidateConfig checks the configuration against the requirements of the
// current environment.
func ValidateConfig(cfg *Config) error {
	var errors []string

	if !validStoreBackends[cfg.StoreBackend] {
		errors = append(errors, fmt.Sprintf("unknown store backend %q (want gorm, redis or memory)", cfg.StoreBackend))
	}
	if cfg.StoreBackend == "gorm" && !validDBDrivers[cfg.DBDriver] {
		errors = append(errors, fmt.Sprintf("unknown database driver %q (want sqlite or postgres)", cfg.DBDriver))
	}

	if cfg.StoreBackend == "gorm" && cfg.DBDriver == "postgres" {
		if cfg.DBHost == "" {
			errors = append(errors, "DB_HOST is required for the postgres driver")
		}
		if cfg.DBUser == "" {
			errors = append(errors, "DB_USER is required for the postgres driver")
		}
		if cfg.DBName == "" {
			errors = append(errors, "DB_NAME is required for the postgres driver")
		}
	}

	if cfg.FreeWeeklyLimit < 0 || cfg.FreeRegenLimit < 0 {
		errors = append(errors, "quota limits must not be negative")
	}
	if cfg.ScanRetentionDays <= 0 {
		errors = append(errors, "SCAN_RETENTION_DAYS must be positive")
	}

	if IsProduction() {
		if cfg.StoreBackend == "memory" {
			errors = append(errors, "the memory store backend is not allowed in production")
		}
		if cfg.StoreBackend == "gorm" && cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
			errors = append(errors, "DB_PASSWORD (or DB_PASSWORD_FILE) is required in production")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
