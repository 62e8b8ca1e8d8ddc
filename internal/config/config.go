package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Env         string
	DatabaseDSN string
	JWTSecret   string
	JWTExpiry   time.Duration

	OpenAIAPIKey string
	OpenAIModel  string

	// GenerationCost is the credit price of one AI generation.
	// InitialCredits is the balance granted at registration.
	GenerationCost    int
	InitialCredits    int
	GenerationTimeout time.Duration
}

func Load() Config {
	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "development"),
		DatabaseDSN:       getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/sitesmith?parseTime=true"),
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		JWTExpiry:         24 * time.Hour,
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GenerationCost:    getEnvInt("GENERATION_COST", 5),
		InitialCredits:    getEnvInt("INITIAL_CREDITS", 20),
		GenerationTimeout: getEnvDuration("GENERATION_TIMEOUT", 120*time.Second),
	}

	if cfg.Env == "production" && cfg.JWTSecret == "dev-secret-change-in-production" {
		slog.Error("JWT_SECRET must be set in production environment")
		os.Exit(1)
	}

	if cfg.GenerationCost < 0 || cfg.InitialCredits < 0 {
		slog.Error("GENERATION_COST and INITIAL_CREDITS must not be negative")
		os.Exit(1)
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
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer env value, using fallback", "key", key, "value", v)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration env value, using fallback", "key", key, "value", v)
		return fallback
	}
	return d
}
