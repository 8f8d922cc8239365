package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Logger      LoggerConfig
	Auth        AuthConfig
	Sheets      SheetsConfig
	Notify      NotifyConfig
	Persistence PersistenceConfig
	Database    DatabaseConfig
	Redis       RedisConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds the operator API key.
type AuthConfig struct {
	APIKey string
}

// SheetsConfig holds the row source feed settings.
type SheetsConfig struct {
	BaseURL        string
	SpreadsheetID  string
	SheetName      string
	APIKey         string
	TimeoutSeconds int
}

// NotifyConfig holds the outbound notification form settings. An empty form
// URL disables the notify action.
type NotifyConfig struct {
	FormURL            string
	OrderNumberField   string
	StudentNumberField string
	StudentNameField   string
	EmailField         string
	TimeoutSeconds     int
}

// PersistenceConfig selects the snapshot store backend.
type PersistenceConfig struct {
	Driver string // "postgres", "redis" or "memory"
}

// DatabaseConfig holds PostgreSQL settings for the postgres driver.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// RedisConfig holds Redis settings for the redis driver.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		Sheets: SheetsConfig{
			BaseURL:        getEnv("SHEETS_BASE_URL", "https://sheets.googleapis.com"),
			SpreadsheetID:  getEnv("SHEETS_SPREADSHEET_ID", ""),
			SheetName:      getEnv("SHEETS_SHEET_NAME", "Form Responses 1"),
			APIKey:         getEnv("SHEETS_API_KEY", ""),
			TimeoutSeconds: getEnvAsInt("SHEETS_TIMEOUT_SECONDS", 15),
		},
		Notify: NotifyConfig{
			FormURL:            getEnv("NOTIFY_FORM_URL", ""),
			OrderNumberField:   getEnv("NOTIFY_FIELD_ORDER_NUMBER", "entry.order_number"),
			StudentNumberField: getEnv("NOTIFY_FIELD_STUDENT_NUMBER", "entry.student_number"),
			StudentNameField:   getEnv("NOTIFY_FIELD_STUDENT_NAME", "entry.student_name"),
			EmailField:         getEnv("NOTIFY_FIELD_EMAIL", "entry.email"),
			TimeoutSeconds:     getEnvAsInt("NOTIFY_TIMEOUT_SECONDS", 10),
		},
		Persistence: PersistenceConfig{
			Driver: getEnv("PERSISTENCE_DRIVER", "postgres"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "merchtracker"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 10),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 2),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 3600),
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", "localhost:6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvAsInt("REDIS_DB", 0),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "board"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	if c.Sheets.SpreadsheetID == "" {
		return fmt.Errorf("sheets spreadsheet ID is required")
	}

	if c.Sheets.APIKey == "" {
		return fmt.Errorf("sheets API key is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	switch c.Persistence.Driver {
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("invalid database port: %d", c.Database.Port)
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.MinConnections < 1 || c.Database.MaxConnections < 1 {
			return fmt.Errorf("database connection counts must be at least 1")
		}
		if c.Database.MinConnections > c.Database.MaxConnections {
			return fmt.Errorf("database min connections cannot exceed max connections")
		}
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis address is required")
		}
	case "memory":
	default:
		return fmt.Errorf("invalid persistence driver: %s (must be postgres, redis, or memory)", c.Persistence.Driver)
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
