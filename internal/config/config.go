package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	SMTP     SMTPConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode + "&prepare_threshold=0"
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
}

// AuthConfig holds the token and lockout policy configuration
type AuthConfig struct {
	AccessSecret         string
	RefreshSecret        string
	AccessExpiry         time.Duration
	RefreshExpiry        time.Duration
	BcryptCost           int
	LockoutThreshold     int
	LockoutDuration      time.Duration
	VerificationExpiry   time.Duration
	PasswordResetExpiry  time.Duration
	RefreshRetention     time.Duration
	FrontendBaseURL      string
	SessionEncryptionKey string
}

// SMTPConfig holds outbound email configuration
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Addr returns the SMTP server address
func (c SMTPConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "shopkita"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Auth: AuthConfig{
			AccessSecret:         getEnv("JWT_ACCESS_SECRET", ""),
			RefreshSecret:        getEnv("JWT_REFRESH_SECRET", ""),
			AccessExpiry:         getEnvAsDuration("JWT_ACCESS_EXPIRY", time.Hour),
			RefreshExpiry:        getEnvAsDuration("JWT_REFRESH_EXPIRY", 30*24*time.Hour),
			BcryptCost:           getEnvAsInt("BCRYPT_COST", 12),
			LockoutThreshold:     getEnvAsInt("LOGIN_LOCKOUT_THRESHOLD", 5),
			LockoutDuration:      getEnvAsDuration("LOGIN_LOCKOUT_DURATION", 15*time.Minute),
			VerificationExpiry:   getEnvAsDuration("VERIFICATION_TOKEN_EXPIRY", 24*time.Hour),
			PasswordResetExpiry:  getEnvAsDuration("PASSWORD_RESET_EXPIRY", 30*time.Minute),
			RefreshRetention:     getEnvAsDuration("REFRESH_TOKEN_RETENTION", 7*24*time.Hour),
			FrontendBaseURL:      getEnv("FRONTEND_BASE_URL", "http://localhost:3000"),
			SessionEncryptionKey: getEnv("SESSION_ENCRYPTION_KEY", "0000000000000000000000000000000000000000000000000000000000000000"), // 32-bytes hex string
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@shopkita.io"),
		},
	}
}

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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
