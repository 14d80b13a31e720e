// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/aristath/mars-command/internal/reliability"
	"github.com/aristath/mars-command/internal/scheduler"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir              string // Base directory for all databases (defaults to "./data", always absolute)
	Port                 int
	LogLevel             string
	DevMode              bool
	DefaultUser          string // Recorded in history when a request carries no X-User header
	HistoryRetentionDays int    // 0 keeps history forever
	MaintenanceSchedule  string
	BackupSchedule       string
	Backup               reliability.S3Config
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("MARS_DATA_DIR", "./data")

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:              absDataDir,
		Port:                 getEnvAsInt("MARS_PORT", 3000),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		DevMode:              getEnvAsBool("DEV_MODE", false),
		DefaultUser:          getEnv("DEFAULT_USER", "default_user"),
		HistoryRetentionDays: getEnvAsInt("HISTORY_RETENTION_DAYS", 0),
		MaintenanceSchedule:  getEnv("MAINTENANCE_SCHEDULE", "0 0 3 * * *"),
		BackupSchedule:       getEnv("BACKUP_SCHEDULE", "0 30 3 * * *"),
		Backup: reliability.S3Config{
			Bucket:          getEnv("BACKUP_S3_BUCKET", ""),
			Region:          getEnv("BACKUP_S3_REGION", ""),
			Endpoint:        getEnv("BACKUP_S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("BACKUP_S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("BACKUP_S3_SECRET_ACCESS_KEY", ""),
			Prefix:          getEnv("BACKUP_S3_PREFIX", "mars-command/"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// BackupDir is where local backup archives are written
func (c *Config) BackupDir() string {
	return filepath.Join(c.DataDir, "backups")
}

// RemoteBackupEnabled reports whether archives are uploaded to a bucket
func (c *Config) RemoteBackupEnabled() bool {
	return c.Backup.Bucket != ""
}

// Validate checks the configuration for values the server cannot run with
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", c.Port)
	}
	if c.HistoryRetentionDays < 0 {
		return fmt.Errorf("invalid HISTORY_RETENTION_DAYS %d: must not be negative", c.HistoryRetentionDays)
	}
	if err := scheduler.ValidateSchedule(c.MaintenanceSchedule); err != nil {
		return fmt.Errorf("invalid MAINTENANCE_SCHEDULE %q: %w", c.MaintenanceSchedule, err)
	}
	if err := scheduler.ValidateSchedule(c.BackupSchedule); err != nil {
		return fmt.Errorf("invalid BACKUP_SCHEDULE %q: %w", c.BackupSchedule, err)
	}
	if (c.Backup.AccessKeyID == "") != (c.Backup.SecretAccessKey == "") {
		return fmt.Errorf("BACKUP_S3_ACCESS_KEY_ID and BACKUP_S3_SECRET_ACCESS_KEY must be set together")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
