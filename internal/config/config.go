package config

import (
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Ledger   LedgerConfig
	Notify   NotifyConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

type DatabaseConfig struct {
	Driver   string // postgres or sqlite
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	Path     string // sqlite only
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	SecretKey      string
	ExpirationTime int // in hours
}

type LedgerConfig struct {
	// LowBalanceThreshold triggers an alert when the available balance drops
	// below it after an expense.
	LowBalanceThreshold decimal.Decimal
}

type NotifyConfig struct {
	ResendAPIKey   string
	FromName       string
	FromEmail      string
	TimeoutSeconds int
}

func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 30),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 30),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "finance_ledger"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			Path:     getEnv("DB_PATH", "data/ledger.db"),
		},
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET", "your-secret-key"),
			ExpirationTime: getEnvInt("JWT_EXPIRY", 24),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Ledger: LedgerConfig{
			LowBalanceThreshold: getEnvDecimal("LOW_BALANCE_THRESHOLD", decimal.NewFromInt(50000)),
		},
		Notify: NotifyConfig{
			ResendAPIKey:   getEnv("RESEND_API_KEY", ""),
			FromName:       getEnv("MAIL_FROM_NAME", "Finance Ledger"),
			FromEmail:      getEnv("MAIL_FROM_EMAIL", "no-reply@example.com"),
			TimeoutSeconds: getEnvInt("NOTIFY_TIMEOUT_SECONDS", 10),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}
