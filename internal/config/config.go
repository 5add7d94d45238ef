package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	SessionStorePostgres = "postgres"
	SessionStoreRedis    = "redis"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string

	Session SessionConfig

	RedisURL   string
	CORSOrigin string
	BcryptCost int

	Log LogConfig
}

type SessionConfig struct {
	Secret     string
	TTL        time.Duration
	Store      string
	CookieName string
}

type LogConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		ttl = 24 * time.Hour
	}

	cost, err := strconv.Atoi(getEnv("BCRYPT_COST", "10"))
	if err != nil {
		cost = 10
	}

	env := getEnv("ENV", "development")
	defaultLevel := "debug"
	if env == "production" {
		defaultLevel = "info"
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         env,
		DatabaseURL: getEnv("DATABASE_URL", ""),

		Session: SessionConfig{
			Secret:     getEnvOrPanic("SESSION_SECRET"),
			TTL:        ttl,
			Store:      getEnv("SESSION_STORE", SessionStorePostgres),
			CookieName: getEnv("SESSION_COOKIE_NAME", "taskboard.sid"),
		},

		RedisURL:   getEnv("REDIS_URL", "redis://localhost:6379/0"),
		CORSOrigin: getEnv("CORS_ORIGIN", "*"),
		BcryptCost: cost,

		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", defaultLevel),
			File:  getEnv("LOG_FILE", ""),
		},
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvOrPanic(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		panic("required environment variable not set: " + key)
	}
	return value
}
