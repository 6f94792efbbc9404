package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Quota    QuotaConfig
	Transfer TransferConfig
	Log      LogConfig
	Metrics  MetricsConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	SigningKey             string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
}

// QuotaConfig holds tenant quota enforcement configuration.
// StrictMode runs quota checks and the subsequent insert inside one
// transaction with a row lock on the tenant's quota record.
type QuotaConfig struct {
	StrictMode         bool
	RecomputeInterval  time.Duration
	DefaultMaxUsers    int
	DefaultMaxAdmins   int
	DefaultMaxStorage  int
	DefaultMaxProducts int
}

// TransferConfig holds CSV import/export configuration
type TransferConfig struct {
	UploadDir   string
	ExportDir   string
	MaxImportMB int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics-related configuration
type MetricsConfig struct {
	Prefix string
}

// Load loads the application configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "products_show"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnv("DB_LOG_LEVEL", "info"),
		},
		JWT: JWTConfig{
			SigningKey:             getEnv("JWT_SIGNING_KEY", "productsshowsecretkey"),
			AccessTokenExpiration:  getEnvAsDuration("JWT_ACCESS_TOKEN_EXPIRATION", 1*time.Hour),
			RefreshTokenExpiration: getEnvAsDuration("JWT_REFRESH_TOKEN_EXPIRATION", 7*24*time.Hour),
		},
		Quota: QuotaConfig{
			StrictMode:         getEnvAsBool("QUOTA_STRICT_MODE", false),
			RecomputeInterval:  getEnvAsDuration("STORAGE_RECOMPUTE_INTERVAL", 15*time.Minute),
			DefaultMaxUsers:    getEnvAsInt("QUOTA_DEFAULT_MAX_USERS", 10),
			DefaultMaxAdmins:   getEnvAsInt("QUOTA_DEFAULT_MAX_ADMINS", 2),
			DefaultMaxStorage:  getEnvAsInt("QUOTA_DEFAULT_MAX_STORAGE_MB", 1024),
			DefaultMaxProducts: getEnvAsInt("QUOTA_DEFAULT_MAX_PRODUCTS", 100),
		},
		Transfer: TransferConfig{
			UploadDir:   getEnv("TRANSFER_UPLOAD_DIR", "uploads/imports"),
			ExportDir:   getEnv("TRANSFER_EXPORT_DIR", "uploads/exports"),
			MaxImportMB: getEnvAsInt("TRANSFER_MAX_IMPORT_MB", 20),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", "products_show"),
		},
	}, nil
}

// Helper functions to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
