package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Config struct {
	Server  ServerConfig
	Session SessionConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	Observ  ObservabilityConfig
	Advisor AdvisorConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type SessionConfig struct {
	Store         string
	TTL           time.Duration
	SweepInterval time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig is disabled when Brokers is empty
type KafkaConfig struct {
	Brokers         []string
	TopicStorefront string
	InsightsGroup   string
}

type ObservabilityConfig struct {
	JaegerEndpoint string
}

// AdvisorConfig holds the only secret the service needs
type AdvisorConfig struct {
	APIKey         string
	Model          string
	TimeoutSeconds int
}

// Timeout returns the advisory call timeout
func (a AdvisorConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// Enabled reports whether events should be published
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// Load reads the configuration from the environment and an optional .env file
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	advisorTimeout, err := strconv.Atoi(getEnv("ADVISOR_TIMEOUT_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid ADVISOR_TIMEOUT_SECONDS: %w", err)
	}
	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "2h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	sweep, err := time.ParseDuration(getEnv("SESSION_SWEEP_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_SWEEP_INTERVAL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getEnv("PORT", "8080"),
			Env:      getEnv("ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", ""),
		},
		Session: SessionConfig{
			Store:         strings.ToLower(getEnv("SESSION_STORE", StoreMemory)),
			TTL:           ttl,
			SweepInterval: sweep,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers:         splitList(getEnv("KAFKA_BROKERS", "")),
			TopicStorefront: getEnv("KAFKA_TOPIC_STOREFRONT_EVENTS", "storefront-events"),
			InsightsGroup:   getEnv("KAFKA_INSIGHTS_GROUP", "storefront-insights"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", ""),
		},
		Advisor: AdvisorConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			Model:          getEnv("ADVISOR_MODEL", "gemini-3-flash-preview"),
			TimeoutSeconds: advisorTimeout,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with
func (c *Config) Validate() error {
	switch c.Session.Store {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("invalid SESSION_STORE %q: want %s or %s", c.Session.Store, StoreMemory, StoreRedis)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive")
	}
	if c.Advisor.TimeoutSeconds <= 0 {
		return fmt.Errorf("ADVISOR_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
