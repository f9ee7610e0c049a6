package config

import (
	"fmt"
	"log"
)

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}

// Validate reports settings that make the storefront unable to start.
func (c *Config) Validate() error {
	switch c.SessionBackend {
	case BackendSQLite:
		if c.SessionDBPath == "" {
			return fmt.Errorf("SESSION_DB_PATH is empty")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is empty")
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is empty")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend)
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is empty")
	}
	return nil
}
