package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string
	Environment string
	LogLevel    string

	FirebaseProject            string
	FirebaseServiceAccountJSON string
	FirebaseServiceAccountPath string
	StorageBucket              string

	RedisURL      string
	StatsCacheTTL time.Duration

	ShareBaseURL string
	JWTSecret    string
	PushEnabled  bool

	RateLimitPerMinute int
}

func Load() (*Config, error) {
	// .env is optional; deployed environments set real variables
	_ = godotenv.Load()

	config := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		FirebaseProject:            getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		StorageBucket:              getEnv("STORAGE_BUCKET", ""),

		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379/0"),
		StatsCacheTTL: getEnvAsDuration("STATS_CACHE_TTL", 10*time.Minute),

		ShareBaseURL: getEnv("SHARE_BASE_URL", "https://masterhub.app"),
		JWTSecret:    getEnv("JWT_SECRET", "dev-secret-change-me"),
		PushEnabled:  getEnvAsBool("PUSH_ENABLED", true),

		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	return config, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}
