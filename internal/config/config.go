package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	DBConn   string
	LogLevel string

	JWTSecret string

	UserServiceURL     string
	UserServiceTimeout time.Duration

	KafkaBrokers     []string
	CardRequestTopic string
	ConsumerGroup    string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string

	ObjectStoreEndpoint  string
	ObjectStoreAccessKey string
	ObjectStoreSecretKey string
	ObjectStoreUseSSL    bool
	AvatarBucket         string

	ReminderSchedule string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	timeout, err := time.ParseDuration(getEnv("USER_SERVICE_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid USER_SERVICE_TIMEOUT: %w", err)
	}

	useSSL, err := strconv.ParseBool(getEnv("OBJECT_STORE_USE_SSL", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid OBJECT_STORE_USE_SSL: %w", err)
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		DBConn:   getEnv("DB_CONN", "host=localhost port=5432 user=test password=test dbname=bank sslmode=disable"),
		LogLevel: getEnv("LOG_LEVEL", "INFO"),

		JWTSecret: getEnv("JWT_SECRET", "secret"),

		UserServiceURL:     getEnv("USER_SERVICE_URL", "http://localhost:8080"),
		UserServiceTimeout: timeout,

		KafkaBrokers:     strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		CardRequestTopic: getEnv("CARD_REQUEST_TOPIC", "cards.requests"),
		ConsumerGroup:    getEnv("CONSUMER_GROUP", "card-worker"),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SenderEmail:  getEnv("SENDER_EMAIL", "noreply@inferno-bank.local"),

		ObjectStoreEndpoint:  getEnv("OBJECT_STORE_ENDPOINT", "localhost:9000"),
		ObjectStoreAccessKey: getEnv("OBJECT_STORE_ACCESS_KEY", ""),
		ObjectStoreSecretKey: getEnv("OBJECT_STORE_SECRET_KEY", ""),
		ObjectStoreUseSSL:    useSSL,
		AvatarBucket:         getEnv("AVATAR_BUCKET", "inferno-avatars"),

		ReminderSchedule: getEnv("REMINDER_SCHEDULE", "0 9 * * *"),
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.UserServiceURL == "" {
		return nil, fmt.Errorf("USER_SERVICE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
