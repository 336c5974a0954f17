package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Log       LogConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Shop      ShopConfig
	Payment   PaymentConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	S3        S3Config
	Scheduler SchedulerConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type LogConfig struct {
	Level  string
	Format string
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

// ShopConfig holds checkout business rules.
type ShopConfig struct {
	ShippingCost     decimal.Decimal
	Currency         string
	ApplyTierPricing bool // capture the matching volume tier price on add/update
	RevalidateStock  bool // re-check stock under row locks when the order is created
}

// PaymentConfig configures the card payment processor (PaymentIntents API).
type PaymentConfig struct {
	SecretKey      string
	PublishableKey string
	BaseURL        string
	Timeout        time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	// ReplayTTL is how long a checkout response is kept for Idempotency-Key replays.
	ReplayTTL time.Duration
}

type KafkaConfig struct {
	Brokers     []string
	TopicPrefix string
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
	PresignExpiry   time.Duration
}

type SchedulerConfig struct {
	Enabled            bool
	ReconcileSpec      string
	UnlinkedOrderAfter time.Duration
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	shippingCost, err := decimal.NewFromString(getEnv("SHOP_SHIPPING_COST", "10.00"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHOP_SHIPPING_COST: %w", err)
	}
	if shippingCost.IsNegative() {
		return nil, fmt.Errorf("invalid SHOP_SHIPPING_COST: must not be negative")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "agroshop"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "your-secret-key"),
			AccessTokenExpiry:  parseDuration(getEnv("JWT_ACCESS_TOKEN_EXPIRY", "15m"), 15*time.Minute),
			RefreshTokenExpiry: parseDuration(getEnv("JWT_REFRESH_TOKEN_EXPIRY", "168h"), 168*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Shop: ShopConfig{
			ShippingCost:     shippingCost.Round(2),
			Currency:         strings.ToLower(getEnv("SHOP_CURRENCY", "usd")),
			ApplyTierPricing: parseBool(getEnv("SHOP_APPLY_TIER_PRICING", "false")),
			RevalidateStock:  parseBool(getEnv("SHOP_REVALIDATE_STOCK", "false")),
		},
		Payment: PaymentConfig{
			SecretKey:      getEnv("STRIPE_SECRET", ""),
			PublishableKey: getEnv("STRIPE_KEY", ""),
			BaseURL:        getEnv("STRIPE_BASE_URL", "https://api.stripe.com"),
			Timeout:        parseDuration(getEnv("STRIPE_TIMEOUT", "30s"), 30*time.Second),
		},
		Redis: RedisConfig{
			Enabled:   parseBool(getEnv("REDIS_ENABLED", "false")),
			Host:      getEnv("REDIS_HOST", "localhost"),
			Port:      getEnv("REDIS_PORT", "6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        parseInt(getEnv("REDIS_DB", "0")),
			ReplayTTL: parseDuration(getEnv("CHECKOUT_REPLAY_TTL", "24h"), 24*time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers:     parseSlice(getEnv("KAFKA_BROKERS", "")),
			TopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", ""),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
			PresignExpiry:   parseDuration(getEnv("AWS_S3_PRESIGN_EXPIRY", "1h"), time.Hour),
		},
		Scheduler: SchedulerConfig{
			Enabled:            parseBool(getEnv("SCHEDULER_ENABLED", "true")),
			ReconcileSpec:      getEnv("RECONCILE_CRON", "*/15 * * * *"),
			UnlinkedOrderAfter: parseDuration(getEnv("RECONCILE_UNLINKED_AFTER", "10m"), 10*time.Minute),
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseBool(s string) bool {
	v, err := strconv.ParseBool(s)
	if err != nil {
		log.Printf("Invalid boolean %s, using false", s)
		return false
	}
	return v
}

func parseInt(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using 0", s)
		return 0
	}
	return v
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
