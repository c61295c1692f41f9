package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the signal monitor service
type Config struct {
	Environment string
	LogLevel    string

	Engine  EngineConfig
	Monitor MonitorConfig
	API     APIConfig
	Redis   RedisConfig
	Audit   AuditConfig
}

// EngineConfig holds engine tunables
type EngineConfig struct {
	MaxHistory        int
	SideEffectTimeout time.Duration
}

// MonitorConfig holds monitoring loop configuration
type MonitorConfig struct {
	Interval     time.Duration
	FetchTimeout time.Duration
	Symbols      []string
	AutoStart    bool
}

// APIConfig holds HTTP API configuration
type APIConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// RedisConfig holds Redis configuration for notification dispatch
type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	Stream       string
	Channel      string
}

// AuditConfig holds PostgreSQL configuration for the audit-log sink
type AuditConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Load reads configuration from the environment, with .env support
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Engine: EngineConfig{
			MaxHistory:        getEnvAsInt("ENGINE_MAX_HISTORY", 100),
			SideEffectTimeout: getEnvAsDuration("ENGINE_SIDE_EFFECT_TIMEOUT", 2*time.Second),
		},
		Monitor: MonitorConfig{
			Interval:     getEnvAsDuration("MONITOR_INTERVAL", 30*time.Second),
			FetchTimeout: getEnvAsDuration("MONITOR_FETCH_TIMEOUT", 10*time.Second),
			Symbols:      getEnvAsStringSlice("MONITOR_SYMBOLS", []string{}),
			AutoStart:    getEnvAsBool("MONITOR_AUTO_START", true),
		},
		API: APIConfig{
			Port:            getEnvAsInt("API_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("API_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("API_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvAsDuration("API_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Enabled:      getEnvAsBool("REDIS_ENABLED", false),
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvAsInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
			Stream:       getEnv("REDIS_ALERT_STREAM", "signal-alerts"),
			Channel:      getEnv("REDIS_ALERT_CHANNEL", "signal-alerts"),
		},
		Audit: AuditConfig{
			Enabled:         getEnvAsBool("AUDIT_DB_ENABLED", false),
			Host:            getEnv("AUDIT_DB_HOST", "localhost"),
			Port:            getEnvAsInt("AUDIT_DB_PORT", 5432),
			User:            getEnv("AUDIT_DB_USER", "postgres"),
			Password:        getEnv("AUDIT_DB_PASSWORD", "postgres"),
			Database:        getEnv("AUDIT_DB_NAME", "signal_monitor"),
			SSLMode:         getEnv("AUDIT_DB_SSL_MODE", "disable"),
			MaxConnections:  getEnvAsInt("AUDIT_DB_MAX_CONNECTIONS", 10),
			MaxIdleConns:    getEnvAsInt("AUDIT_DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: getEnvAsDuration("AUDIT_DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration consistency
func (c *Config) Validate() error {
	if c.Engine.MaxHistory <= 0 {
		return fmt.Errorf("ENGINE_MAX_HISTORY must be positive")
	}
	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("MONITOR_INTERVAL must be positive")
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("API_PORT must be a valid port number")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
