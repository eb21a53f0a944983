package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	Env           string
	Port          string
	DBURL         string
	HashingSecret string
	ServerURL     string
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	SourceEmail   string
	DefaultLocale string
}

func Load() *Config {
	cfg := &Config{
		Env:           getEnv("ENV", "development"),
		Port:          getEnv("PORT", "8080"),
		DBURL:         mustGetEnv("DB_URL"),
		HashingSecret: mustGetEnv("HASHING_SECRET"),
		SMTPHost:      getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername:  getEnv("SMTP_USERNAME", "pets.io@gmail.com"),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SourceEmail:   getEnv("SOURCE_EMAIL", "pets.io@gmail.com"),
		DefaultLocale: getEnv("DEFAULT_LOCALE", "en-us"),
	}
	cfg.ServerURL = getEnv("SERVER_URL", "http://localhost:"+cfg.Port)

	return cfg
}

func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func mustGetEnv(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Fatalf("Missing required environment variable: %s", key)
	return ""
}

func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %d", key, defaultVal)
		return defaultVal
	}
	return val
}
