package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

type Config struct {
	ServerPort  int
	MockAPIPort int
	LogLevel    string

	APIBaseURL  string
	LoginPath   string
	HTTPTimeout time.Duration

	SessionBackend string
	SessionDBPath  string
	DatabaseURL    string
	RedisURL       string

	KafkaBrokers []string

	PaymentDelay  time.Duration
	RedirectDelay time.Duration

	JWTSecret     []byte
	MockAPIDBPath string
}

// Load reads .env when present and then the process environment.
func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}
	return FromEnv()
}

func FromEnv() *Config {
	return &Config{
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		MockAPIPort: EnvIntDefault("MOCKAPI_PORT", 3000),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		APIBaseURL:  EnvDefault("API_BASE_URL", "http://localhost:3000"),
		LoginPath:   EnvDefault("LOGIN_PATH", "/user/login"),
		HTTPTimeout: EnvDurationDefault("HTTP_TIMEOUT", 5*time.Second),

		SessionBackend: strings.ToLower(EnvDefault("SESSION_BACKEND", BackendSQLite)),
		SessionDBPath:  EnvDefault("SESSION_DB_PATH", "hortifood.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		PaymentDelay:  EnvDurationDefault("PAYMENT_DELAY", 3*time.Second),
		RedirectDelay: EnvDurationDefault("REDIRECT_DELAY", 2*time.Second),

		JWTSecret:     []byte(os.Getenv("JWT_SECRET")),
		MockAPIDBPath: EnvDefault("MOCKAPI_DB_PATH", "file::memory:?cache=shared"),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// EnvDurationDefault accepts Go duration strings ("1500ms", "3s").
func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return def
	}
	return d
}
