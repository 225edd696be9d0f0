// Package config loads service configuration from the environment and
// the insight template library from YAML, with optional hot reload.
package config

import (
	"encoding/hex"
	"os"
	"strconv"
	"time"

	pkgerrors "netgraph-backend/pkg/errors"
)

// Config is the full service configuration.
type Config struct {
	Environment string
	HTTPAddr    string

	AWSRegion      string
	TableName      string
	OwnerIndexName string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CacheTTL       time.Duration
	CacheMaxItems  int
	CacheMaxMemory int64

	MasterKey []byte

	TemplatePath  string
	WatchTemplate bool

	EventBusName string

	AnalysisWorkers   int
	AnalysisQueueSize int
	AnalysisTimeout   time.Duration
}

// Load reads configuration from the environment. The master key is
// required outside local development.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "local"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		TableName:      getEnv("TABLE_NAME", "netgraph"),
		OwnerIndexName: getEnv("OWNER_INDEX_NAME", "GSI1"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		CacheTTL:       getEnvDuration("CACHE_TTL", 15*time.Minute),
		CacheMaxItems:  getEnvInt("CACHE_MAX_ITEMS", 1024),
		CacheMaxMemory: int64(getEnvInt("CACHE_MAX_MEMORY_MB", 256)) * 1024 * 1024,

		TemplatePath:  getEnv("TEMPLATE_PATH", ""),
		WatchTemplate: getEnvBool("TEMPLATE_WATCH", true),

		EventBusName: getEnv("EVENT_BUS_NAME", ""),

		AnalysisWorkers:   getEnvInt("ANALYSIS_WORKERS", 0),
		AnalysisQueueSize: getEnvInt("ANALYSIS_QUEUE_SIZE", 0),
		AnalysisTimeout:   getEnvDuration("ANALYSIS_TIMEOUT", 5*time.Minute),
	}

	masterKeyHex := getEnv("MASTER_KEY", "")
	if masterKeyHex == "" {
		if cfg.Environment != "local" {
			return nil, pkgerrors.NewValidationError("MASTER_KEY is required outside local environment")
		}
		// Deterministic local-only key; never used in deployed environments.
		masterKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	}
	masterKey, err := hex.DecodeString(masterKeyHex)
	if err != nil {
		return nil, pkgerrors.NewValidationError("MASTER_KEY must be hex encoded").WithCause(err)
	}
	if len(masterKey) != 32 {
		return nil, pkgerrors.NewValidationError("MASTER_KEY must decode to 32 bytes")
	}
	cfg.MasterKey = masterKey
	return cfg, nil
}

// IsLocal reports whether the service runs with local defaults.
func (c *Config) IsLocal() bool {
	return c.Environment == "local"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
