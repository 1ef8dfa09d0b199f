package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	StorageDriver string

	// Redis backs the document sequence when RedisAddr is set.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// RabbitMQ receives transaction events when AMQPURL is set.
	AMQPURL      string
	AMQPExchange string

	DefaultMinimumStock int64
	SaleInitialStatus   string
	LoyaltyEarnUnit     decimal.Decimal
	LoyaltyPointValue   decimal.Decimal

	RateLimit          string
	CORSAllowedOrigins []string
	CatalogCacheTTL    time.Duration
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("AMQP_URL", "")
	v.SetDefault("AMQP_EXCHANGE", "retail_transactions")
	v.SetDefault("DEFAULT_MIN_STOCK", 5)
	v.SetDefault("SALE_INITIAL_STATUS", "COMPLETED")
	v.SetDefault("LOYALTY_EARN_UNIT", "10")
	v.SetDefault("LOYALTY_POINT_VALUE", "0.10")
	v.SetDefault("RATE_LIMIT", "300-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("CATALOG_CACHE_TTL", "30s")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabaseURL:   v.GetString("PGSQL_URL"),
		Port:          v.GetString("PORT"),
		IsProduction:  v.GetBool("IS_PRODUCTION"),
		EnableDBCheck: v.GetBool("ENABLE_DB_CHECK"),
		StorageDriver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		AMQPURL:       v.GetString("AMQP_URL"),
		AMQPExchange:  v.GetString("AMQP_EXCHANGE"),
		RateLimit:     v.GetString("RATE_LIMIT"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	switch cfg.StorageDriver {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			log.Println("Warning: PGSQL_URL environment variable not set.")
		}
	case StorageMemory:
		log.Println("Warning: STORAGE_DRIVER=memory, data is lost on restart.")
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	cfg.DefaultMinimumStock = v.GetInt64("DEFAULT_MIN_STOCK")
	if cfg.DefaultMinimumStock < 0 {
		log.Printf("Warning: DEFAULT_MIN_STOCK is negative (%d). Defaulting to 5.\n", cfg.DefaultMinimumStock)
		cfg.DefaultMinimumStock = 5
	}

	cfg.SaleInitialStatus = strings.ToUpper(v.GetString("SALE_INITIAL_STATUS"))
	if cfg.SaleInitialStatus != "COMPLETED" && cfg.SaleInitialStatus != "PENDING" {
		return nil, fmt.Errorf("SALE_INITIAL_STATUS must be COMPLETED or PENDING, got %q", cfg.SaleInitialStatus)
	}

	earnUnit, err := decimal.NewFromString(v.GetString("LOYALTY_EARN_UNIT"))
	if err != nil || !earnUnit.IsPositive() {
		return nil, fmt.Errorf("LOYALTY_EARN_UNIT must be a positive decimal, got %q", v.GetString("LOYALTY_EARN_UNIT"))
	}
	cfg.LoyaltyEarnUnit = earnUnit

	pointValue, err := decimal.NewFromString(v.GetString("LOYALTY_POINT_VALUE"))
	if err != nil || !pointValue.IsPositive() {
		return nil, fmt.Errorf("LOYALTY_POINT_VALUE must be a positive decimal, got %q", v.GetString("LOYALTY_POINT_VALUE"))
	}
	cfg.LoyaltyPointValue = pointValue

	ttlStr := v.GetString("CATALOG_CACHE_TTL")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil || ttl < 0 {
		ttl = 30 * time.Second
		log.Printf("Warning: Invalid value for CATALOG_CACHE_TTL ('%s'). Defaulting to %s.\n", ttlStr, ttl.String())
	}
	cfg.CatalogCacheTTL = ttl

	if origins := strings.TrimSpace(v.GetString("CORS_ALLOWED_ORIGINS")); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	}

	if cfg.RedisAddr == "" {
		log.Println("Warning: REDIS_ADDR not set. Document numbers come from the primary store.")
	}
	if cfg.AMQPURL == "" {
		log.Println("Warning: AMQP_URL not set. Transaction events will not be published.")
	}

	return cfg, nil
}
