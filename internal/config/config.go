package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	HTTPAddr       string
	DBDriver       string
	DBPath         string
	DatabaseURL    string
	RedisAddr      string
	RedisPass      string
	ReportCacheTTL time.Duration
	SlowReport     time.Duration
	KafkaBrokers   []string
	KafkaTopic     string
	CORSOrigins    []string
	RequestTimeout time.Duration
	LogLevel       string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() AppConfig {
	_ = godotenv.Load()

	return AppConfig{
		HTTPAddr:       getEnv("HTTP_ADDR", ":8888"),
		DBDriver:       getEnv("DB_DRIVER", "sqlite"),
		DBPath:         getEnv("DB_PATH", "ledger.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPass:      getEnv("REDIS_PASS", ""),
		ReportCacheTTL: getEnvSeconds("REPORT_CACHE_TTL_SECONDS", 120),
		SlowReport:     time.Duration(getEnvInt("REPORT_SLOW_MS", 500)) * time.Millisecond,
		KafkaBrokers:   getEnvSlice("KAFKA_BROKERS", nil),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "ledger-events"),
		CORSOrigins:    getEnvSlice("CORS_ORIGINS", []string{"*"}),
		RequestTimeout: getEnvSeconds("REQUEST_TIMEOUT_SECONDS", 30),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var out []string
		for _, v := range strings.Split(value, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
		return out
	}
	return defaultValue
}

func getEnvInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Second
}
