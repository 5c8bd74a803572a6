package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	Matching MatchingConfig
	Sweeps   SweepsConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// MatchingConfig holds the scoring cutoffs and fare estimate parameters.
type MatchingConfig struct {
	OriginCutoffKm  float64
	DestCutoffKm    float64
	MaxTimeWindow   time.Duration
	CostBase        float64
	CostPerKm       float64
	MaxGroupSize    int
	ReminderDelay   time.Duration
	ConfirmDeadline time.Duration
}

// SweepsConfig holds the maintenance sweep cadences.
type SweepsConfig struct {
	ExpiryInterval   time.Duration
	TimeoutInterval  time.Duration
	CleanupInterval  time.Duration
	ReminderInterval time.Duration
	BatchSize        int
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "campool"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "campool-engine"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Matching: MatchingConfig{
			OriginCutoffKm:  getFloatEnv("MATCH_ORIGIN_CUTOFF_KM", 0.5),
			DestCutoffKm:    getFloatEnv("MATCH_DEST_CUTOFF_KM", 1.0),
			MaxTimeWindow:   getDurationEnv("MATCH_MAX_TIME_WINDOW", 30*time.Minute),
			CostBase:        getFloatEnv("MATCH_COST_BASE", 60),
			CostPerKm:       getFloatEnv("MATCH_COST_PER_KM", 30),
			MaxGroupSize:    getIntEnv("MATCH_MAX_GROUP_SIZE", 4),
			ReminderDelay:   getDurationEnv("MATCH_REMINDER_DELAY", 5*time.Minute),
			ConfirmDeadline: getDurationEnv("MATCH_CONFIRM_DEADLINE", 30*time.Minute),
		},
		Sweeps: SweepsConfig{
			ExpiryInterval:   getDurationEnv("SWEEP_EXPIRY_INTERVAL", time.Minute),
			TimeoutInterval:  getDurationEnv("SWEEP_TIMEOUT_INTERVAL", time.Minute),
			CleanupInterval:  getDurationEnv("SWEEP_CLEANUP_INTERVAL", 5*time.Minute),
			ReminderInterval: getDurationEnv("SWEEP_REMINDER_INTERVAL", 30*time.Second),
			BatchSize:        getIntEnv("SWEEP_BATCH_SIZE", 100),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
