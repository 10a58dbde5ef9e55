package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Provider exposes read-only access to the application configuration.
// Components depend on this interface rather than the concrete struct so
// tests can substitute their own values.
type Provider interface {
	GetPort() string
	GetStorageDriver() string
	GetSQLitePath() string
	GetSurrealURL() string
	GetSurrealUser() string
	GetSurrealPass() string
	GetSurrealNs() string
	GetSurrealDb() string
	GetSessionSecret() string
	GetBcryptCost() int
	GetStoreTimeout() time.Duration
}

// Config holds all configuration for the application.
type Config struct {
	Port          string
	StorageDriver string
	SQLitePath    string
	SurrealURL    string
	SurrealUser   string
	SurrealPass   string
	SurrealNs     string
	SurrealDb     string
	SessionSecret string
	BcryptCost    int
	StoreTimeout  time.Duration
}

// New loads configuration from environment variables.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		Port:          getEnv("PORT", "3000"),
		StorageDriver: getEnv("STORAGE_DRIVER", "sqlite"),
		SQLitePath:    getEnv("SQLITE_PATH", "chat.db"),
		SurrealURL:    os.Getenv("SURREAL_URL"),
		SurrealUser:   os.Getenv("SURREAL_USER"),
		SurrealPass:   os.Getenv("SURREAL_PASS"),
		SurrealNs:     os.Getenv("SURREAL_NS"),
		SurrealDb:     os.Getenv("SURREAL_DB"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		BcryptCost:    getEnvInt("BCRYPT_COST", 10),
		StoreTimeout:  getEnvDuration("STORE_TIMEOUT", 5*time.Second),
	}

	if cfg.SessionSecret == "" {
		log.Fatal("Required environment variable SESSION_SECRET is not set.")
	}
	if cfg.StorageDriver == "surreal" && (cfg.SurrealURL == "" || cfg.SurrealNs == "" || cfg.SurrealDb == "") {
		log.Fatal("STORAGE_DRIVER=surreal requires SURREAL_URL, SURREAL_NS and SURREAL_DB to be set.")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func (c *Config) GetPort() string                { return c.Port }
func (c *Config) GetStorageDriver() string       { return c.StorageDriver }
func (c *Config) GetSQLitePath() string          { return c.SQLitePath }
func (c *Config) GetSurrealURL() string          { return c.SurrealURL }
func (c *Config) GetSurrealUser() string         { return c.SurrealUser }
func (c *Config) GetSurrealPass() string         { return c.SurrealPass }
func (c *Config) GetSurrealNs() string           { return c.SurrealNs }
func (c *Config) GetSurrealDb() string           { return c.SurrealDb }
func (c *Config) GetSessionSecret() string       { return c.SessionSecret }
func (c *Config) GetBcryptCost() int             { return c.BcryptCost }
func (c *Config) GetStoreTimeout() time.Duration { return c.StoreTimeout }
