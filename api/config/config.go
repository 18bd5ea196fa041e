package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Env           string
	Port          string
	DBPath        string
	ClientOrigin  string
	ModelProvider string
	GroqAPIKey    string
	GroqModel     string
	OpenAIAPIKey  string
	OpenAIModel   string
	JWTSecret     string
	SMTPHost      string
	SMTPPort      string
	SMTPUser      string
	SMTPPassword  string
	SMTPFrom      string
	MaxUploadSize int64
	RateLimitMax  int
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Env:           getEnv("APP_ENV", "development"),
		Port:          getEnv("PORT", "8080"),
		DBPath:        getEnv("DB_PATH", "./storage/academia.db"),
		ClientOrigin:  getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		ModelProvider: getEnv("MODEL_PROVIDER", "groq"),
		GroqAPIKey:    getEnv("GROQ_API_KEY", ""),
		GroqModel:     getEnv("GROQ_MODEL", "llama3-70b-8192"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		JWTSecret:     getEnv("JWT_SECRET", "development-secret"),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUser:      getEnv("SMTP_USER", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:      getEnv("SMTP_FROM", "no-reply@academia-ai.local"),
		MaxUploadSize: 10485760, // 10MB default
		RateLimitMax:  getEnvInt("RATE_LIMIT_MAX", 0),
	}

	if cfg.RateLimitMax == 0 {
		if cfg.Env == "production" {
			cfg.RateLimitMax = 100
		} else {
			cfg.RateLimitMax = 1000
		}
	}

	return cfg, nil
}

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
