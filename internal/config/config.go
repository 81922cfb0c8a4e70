package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	DatabaseType    string
	DatabasePath    string
	DatabaseURL     string
	MigrationsPath  string
	StaticFilesPath string
	LogMode         string

	SessionSecret   string
	SessionDuration time.Duration
	LoginRateLimit  int

	GeminiAPIKey string
	GeminiModel  string

	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	ContextCacheTTL  time.Duration
	ContextCacheSize int

	AWSRegion        string
	SESFromEmail     string
	SESFromName      string
	AdminNotifyEmail string
	AppBaseURL       string
	EmailDebug       bool

	DefaultAdminUsername string
	DefaultAdminPassword string
}

// Load reads configuration from environment variables with sensible defaults.
// When CONFIG_FILE points at a YAML file its values are used as defaults for
// any variable that is not set in the environment.
func Load() *Config {
	file := map[string]string{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		values, err := readFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: ignoring config file %s: %v\n", path, err)
		} else {
			file = values
		}
	}
	return build(func(key, defaultValue string) string {
		if value := os.Getenv(key); value != "" {
			return value
		}
		if value, ok := file[key]; ok && value != "" {
			return value
		}
		return defaultValue
	})
}

func build(getEnv func(key, defaultValue string) string) *Config {
	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		DatabaseType:    getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:    getEnv("DB_PATH", "./smartspeak.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		StaticFilesPath: getEnv("STATIC_PATH", "./static"),
		LogMode:         getEnv("LOG_MODE", "development"),

		SessionSecret:   getEnv("SESSION_SECRET", "change-me-in-production"),
		SessionDuration: parseDuration(getEnv("SESSION_DURATION", "24h"), 24*time.Hour),
		LoginRateLimit:  parseInt(getEnv("LOGIN_RATE_LIMIT", "10"), 10),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          parseInt(getEnv("REDIS_DB", "0"), 0),
		ContextCacheTTL:  parseDuration(getEnv("CONTEXT_CACHE_TTL", "30m"), 30*time.Minute),
		ContextCacheSize: parseInt(getEnv("CONTEXT_CACHE_SIZE", "1024"), 1024),

		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:     getEnv("SES_FROM_EMAIL", ""),
		SESFromName:      getEnv("SES_FROM_NAME", "SmartSpeak"),
		AdminNotifyEmail: getEnv("ADMIN_NOTIFY_EMAIL", ""),
		AppBaseURL:       getEnv("APP_BASE_URL", "http://localhost:8080"),
		EmailDebug:       getEnv("EMAIL_DEBUG", "false") == "true",

		DefaultAdminUsername: getEnv("DEFAULT_ADMIN_USERNAME", "admin"),
		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", "admin123"),
	}
}

// readFile loads a flat YAML mapping of configuration keys
func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	return values, nil
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
