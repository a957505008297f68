package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Payment   PaymentConfig
	Ethereum  EthereumConfig
	S3        S3Config
	Events    EventsConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
	ConnectAttempts int
}

// RedisConfig holds the cart store configuration.
type RedisConfig struct {
	URL     string
	CartTTL time.Duration
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds token signing configuration.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// RateLimitConfig holds the per-client request budget.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	Burst             int
}

// PaymentConfig holds payment processing policy.
type PaymentConfig struct {
	Currency           string
	BankAutoConfirm    bool
	EthereumPendingTTL time.Duration
	BankPendingTTL     time.Duration
	SweepInterval      time.Duration
}

// EthereumConfig holds the blockchain bridge configuration.
type EthereumConfig struct {
	Enabled         bool
	RPCURL          string
	PrivateKey      string
	ChainID         int64
	ContractAddress string
	ArtifactPath    string // contract artifact JSON, local path or S3 key
}

// S3Config holds AWS S3 configuration for contract artifacts.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // Path prefix within bucket (e.g., "contracts/")
}

// EventsConfig selects where payment events are published.
type EventsConfig struct {
	Backend      string // "none", "sns" or "kafka"
	SNSTopicARN  string
	Region       string
	KafkaBrokers []string
	KafkaTopic   string
}

// Load loads configuration from environment variables, reading a .env file first when present.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read env file %s: %w", envFile, err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "bookstore"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
			ConnectAttempts: getEnvAsInt("DB_CONNECT_ATTEMPTS", 5),
		},
		Redis: RedisConfig{
			URL:     getEnv("REDIS_URL", "redis://localhost:6379/0"),
			CartTTL: getEnvAsDuration("CART_TTL", 7*24*time.Hour),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getEnvAsDuration("JWT_TTL", 24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 50),
		},
		Payment: PaymentConfig{
			Currency:           getEnv("PAYMENT_CURRENCY", "VND"),
			BankAutoConfirm:    getEnvAsBool("PAYMENT_BANK_AUTO_CONFIRM", false),
			EthereumPendingTTL: getEnvAsDuration("PAYMENT_PENDING_TTL_ETHEREUM", 30*time.Minute),
			BankPendingTTL:     getEnvAsDuration("PAYMENT_PENDING_TTL_BANK_TRANSFER", 72*time.Hour),
			SweepInterval:      getEnvAsDuration("PAYMENT_SWEEP_INTERVAL", time.Minute),
		},
		Ethereum: EthereumConfig{
			Enabled:         getEnvAsBool("ETHEREUM_ENABLED", false),
			RPCURL:          getEnv("ETHEREUM_RPC_URL", "http://localhost:8545"),
			PrivateKey:      getEnv("PRIVATE_KEY", ""),
			ChainID:         int64(getEnvAsInt("ETHEREUM_CHAIN_ID", 31337)),
			ContractAddress: getEnv("ETHEREUM_CONTRACT_ADDRESS", ""),
			ArtifactPath:    getEnv("ETHEREUM_ARTIFACT_PATH", ""),
		},
		S3: S3Config{
			Enabled: getEnvAsBool("S3_ENABLED", false),
			Bucket:  getEnv("S3_BUCKET", ""),
			Region:  getEnv("S3_REGION", "us-east-1"),
			Prefix:  getEnv("S3_PREFIX", "contracts/"),
		},
		Events: EventsConfig{
			Backend:      getEnv("EVENTS_BACKEND", "none"),
			SNSTopicARN:  getEnv("EVENTS_SNS_TOPIC_ARN", ""),
			Region:       getEnv("EVENTS_REGION", "us-east-1"),
			KafkaBrokers: getEnvAsList("EVENTS_KAFKA_BROKERS", nil),
			KafkaTopic:   getEnv("EVENTS_KAFKA_TOPIC", "payment-events"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("redis URL is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("JWT TTL must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerMinute < 1 || c.RateLimit.Burst < 1) {
		return fmt.Errorf("rate limit requests per minute and burst must be at least 1")
	}

	if c.Payment.Currency == "" {
		return fmt.Errorf("payment currency is required")
	}

	if c.Payment.SweepInterval <= 0 {
		return fmt.Errorf("payment sweep interval must be positive")
	}

	if c.Ethereum.Enabled {
		if c.Ethereum.RPCURL == "" {
			return fmt.Errorf("ethereum RPC URL is required when ethereum is enabled")
		}
		if c.Ethereum.PrivateKey == "" {
			return fmt.Errorf("private key is required when ethereum is enabled")
		}
		if c.Ethereum.ContractAddress == "" && c.Ethereum.ArtifactPath == "" {
			return fmt.Errorf("ethereum contract address or artifact path is required when ethereum is enabled")
		}
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	switch c.Events.Backend {
	case "none":
	case "sns":
		if c.Events.SNSTopicARN == "" {
			return fmt.Errorf("SNS topic ARN is required for the sns events backend")
		}
	case "kafka":
		if len(c.Events.KafkaBrokers) == 0 || c.Events.KafkaTopic == "" {
			return fmt.Errorf("kafka brokers and topic are required for the kafka events backend")
		}
	default:
		return fmt.Errorf("invalid events backend: %s (must be none, sns, or kafka)", c.Events.Backend)
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a time.Duration (e.g. "30m") or returns a default value.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList retrieves a comma separated environment variable.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
