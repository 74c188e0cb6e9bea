package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Mail     MailConfig
	App      AppConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret             string
	SessionTokenExpiry time.Duration // session ("login") tokens
	VerifyTokenExpiry  time.Duration // email-verification token issued at registration
	ResendTokenExpiry  time.Duration // email-verification token issued on resend
	ResetTokenExpiry   time.Duration // lifetime of a persisted password-reset record
}

type MailConfig struct {
	Host        string
	Port        string
	Username    string
	Password    string
	FromAddress string
}

type AppConfig struct {
	Name string
	URL  string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "accounts"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "your-secret-key"),
			SessionTokenExpiry: parseDuration(getEnv("SESSION_TOKEN_EXPIRY", "24h"), 24*time.Hour),
			VerifyTokenExpiry:  parseDuration(getEnv("VERIFY_TOKEN_EXPIRY", "120m"), 120*time.Minute),
			ResendTokenExpiry:  parseDuration(getEnv("RESEND_TOKEN_EXPIRY", "15m"), 15*time.Minute),
			ResetTokenExpiry:   parseDuration(getEnv("RESET_TOKEN_EXPIRY", "60m"), 60*time.Minute),
		},
		Mail: MailConfig{
			Host:        getEnv("MAIL_HOST", "localhost"),
			Port:        getEnv("MAIL_PORT", "587"),
			Username:    getEnv("MAIL_USERNAME", ""),
			Password:    getEnv("MAIL_PASSWORD", ""),
			FromAddress: getEnv("MAIL_FROM_ADDRESS", "no-reply@localhost"),
		},
		App: AppConfig{
			Name: getEnv("APP_NAME", "Accounts"),
			URL:  getEnv("APP_URL", "http://localhost:8080"),
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}
