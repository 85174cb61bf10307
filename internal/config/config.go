package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv       string
	Port          string
	JWTSecret     string
	AdminLogin    string
	AdminPassword string // bcrypt hash
	Database      DatabaseConfig
	ForceManager  ForceManagerConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Alter    bool
}

// ForceManagerConfig holds the remote API connection settings.
// Credentials and the session token are persisted in the config_param
// table; the values here are the bootstrap defaults written on first
// start.
type ForceManagerConfig struct {
	BaseURL         string
	LoginURL        string
	APIUser         string
	APIPassword     string
	SyncInterval    int // minutes
	DefaultCountry  string
	FallbackRepID   int64
	FallbackRepName string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		NodeEnv:       getEnv("NODE_ENV", "development"),
		Port:          getEnv("PORT", "3001"),
		JWTSecret:     jwtSecret,
		AdminLogin:    getEnv("ADMIN_LOGIN", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD_HASH"),
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "fmbridge"),
			Alter:    getEnv("DB_ALTER", "false") == "true",
		},
		ForceManager: ForceManagerConfig{
			BaseURL:         getEnv("FM_BASE_URL", "https://api.forcemanager.com/api/v4"),
			LoginURL:        os.Getenv("FM_LOGIN_URL"),
			APIUser:         os.Getenv("FM_API_USER"),
			APIPassword:     os.Getenv("FM_API_PASSWORD"),
			SyncInterval:    getEnvInt("FM_SYNC_INTERVAL", 15),
			DefaultCountry:  getEnv("FM_DEFAULT_COUNTRY", "ES"),
			FallbackRepID:   int64(getEnvInt("FM_FALLBACK_REP_ID", 95)),
			FallbackRepName: getEnv("FM_FALLBACK_REP_NAME", "Joan Bonell"),
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
