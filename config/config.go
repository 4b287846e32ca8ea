package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/yourusername/loanlink/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	Port            string
	Env             string
	DatabaseURL     string
	JWTSecret       string
	JWTExpiry       time.Duration
	StripeSecretKey string
	RedisAddr       string
	ClientURL       string
	LogLevel        string
	LogFormat       string
}

func LoadConfig() (*Config, error) {
	godotenv.Load()

	return &Config{
		Port:            os.Getenv("PORT"),
		Env:             getEnvOrDefault("APP_ENV", "development"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTExpiry:       getDurationOrDefault("JWT_EXPIRE", 7*24*time.Hour),
		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		ClientURL:       getEnvOrDefault("CLIENT_URL", "http://localhost:5173"),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       getEnvOrDefault("LOG_FORMAT", "json"),
	}, nil
}

// IsProduction controls cookie security flags.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Loan{}, &models.LoanApplication{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
