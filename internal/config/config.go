// Package config loads server configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gatewei/gatewei/internal/wei"
)

// Config holds all configuration for the server
type Config struct {
	Server    ServerConfig
	Chain     ChainConfig
	Payment   PaymentConfig
	Content   ContentConfig
	Records   RecordsConfig
	Cache     CacheConfig
	Auth      AuthConfig
	Logging   LoggingConfig
	RateLimit RateLimitConfig
	Security  SecurityConfig
	Proxy     ProxyConfig
	Metrics   MetricsConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int    `validate:"min=1,max=65535"`
	Host           string `validate:"required"`
	ReadTimeout    int    // seconds
	WriteTimeout   int    // seconds
	IdleTimeout    int    // seconds
	RequestTimeout int    // seconds
}

// ChainConfig holds the JSON-RPC endpoint settings
type ChainConfig struct {
	RPCURL         string `validate:"required,url"`
	ChainID        int64  `validate:"min=1"`
	RequestTimeout int    // seconds, per RPC round trip
}

// PaymentConfig holds what the verifier checks every payment against
type PaymentConfig struct {
	ContractAddress string `validate:"required,eth_addr"`
	Beneficiary     string `validate:"required,eth_addr"`
	PriceWei        *big.Int
	// ResourceID, when set, additionally requires the matched payment event
	// to name this resource. Empty keeps the looser beneficiary+amount check.
	ResourceID string
}

// ContentConfig holds content resolution settings
type ContentConfig struct {
	IPFSGateway string `validate:"omitempty,url"`
}

// RecordsConfig holds verification record store configuration
type RecordsConfig struct {
	Backend  string `validate:"oneof=memory sqlite postgres redis"`
	SQLite   SQLiteConfig
	Postgres PostgresConfig
	Redis    RedisConfig
}

// SQLiteConfig holds SQLite settings
type SQLiteConfig struct {
	Path string
}

// PostgresConfig holds Postgres connection settings
type PostgresConfig struct {
	URL string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CacheConfig holds the resource metadata cache settings
type CacheConfig struct {
	Enabled    bool
	MaxSizeMB  int
	TTLSeconds int
}

// AuthConfig holds authentication settings for admin routes
type AuthConfig struct {
	Type string `validate:"oneof=none api-key"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=text json"`
	// File enables rotating log file output alongside stdout when non-empty
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	Enabled        bool
	RequestsPerMin int
	BurstSize      int
	CleanupMinutes int
}

// SecurityConfig holds security filter settings
type SecurityConfig struct {
	FilterEnabled bool
	MaxBodySizeMB int
}

// ProxyConfig holds trusted proxy settings for X-Forwarded-For handling
type ProxyConfig struct {
	TrustProxy     bool
	TrustedProxies []string // CIDR notation
}

// MetricsConfig holds Prometheus settings
type MetricsConfig struct {
	Enabled bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvInt("PORT", 8080),
			Host:           getEnv("HOST", "0.0.0.0"),
			ReadTimeout:    getEnvInt("SERVER_READ_TIMEOUT", 30),
			WriteTimeout:   getEnvInt("SERVER_WRITE_TIMEOUT", 60),
			IdleTimeout:    getEnvInt("SERVER_IDLE_TIMEOUT", 120),
			RequestTimeout: getEnvInt("SERVER_REQUEST_TIMEOUT", 30),
		},
		Chain: ChainConfig{
			RPCURL:         getEnv("CHAIN_RPC_URL", ""),
			ChainID:        int64(getEnvInt("CHAIN_ID", 1)),
			RequestTimeout: getEnvInt("CHAIN_REQUEST_TIMEOUT", 15),
		},
		Payment: PaymentConfig{
			ContractAddress: getEnv("VAULT_ADDRESS", ""),
			Beneficiary:     getEnv("BENEFICIARY_ADDRESS", ""),
			ResourceID:      getEnv("EXPECTED_RESOURCE_ID", ""),
		},
		Content: ContentConfig{
			IPFSGateway: getEnv("IPFS_GATEWAY", "https://ipfs.io/ipfs/"),
		},
		Records: RecordsConfig{
			Backend: getEnv("RECORDS_BACKEND", "memory"),
			SQLite: SQLiteConfig{
				Path: getEnv("SQLITE_PATH", "./data/gatewei.db"),
			},
			Postgres: PostgresConfig{
				URL: getEnv("DATABASE_URL", ""),
			},
			Redis: RedisConfig{
				Addr:     getEnv("REDIS_ADDR", ""),
				Password: getEnv("REDIS_PASSWORD", ""),
				DB:       getEnvInt("REDIS_DB", 0),
			},
		},
		Cache: CacheConfig{
			Enabled:    getEnvBool("CACHE_ENABLED", true),
			MaxSizeMB:  getEnvInt("CACHE_MAX_SIZE_MB", 64),
			TTLSeconds: getEnvInt("CACHE_TTL_SECONDS", 60),
		},
		Auth: AuthConfig{
			Type: getEnv("AUTH_TYPE", "none"),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvInt("LOG_FILE_MAX_SIZE_MB", 100),
			MaxBackups: getEnvInt("LOG_FILE_MAX_BACKUPS", 3),
			MaxAgeDays: getEnvInt("LOG_FILE_MAX_AGE_DAYS", 28),
		},
		RateLimit: RateLimitConfig{
			Enabled:        getEnvBool("RATE_LIMIT_ENABLED", true),
			RequestsPerMin: getEnvInt("RATE_LIMIT_RPM", 300),
			BurstSize:      getEnvInt("RATE_LIMIT_BURST", 50),
			CleanupMinutes: getEnvInt("RATE_LIMIT_CLEANUP_MINUTES", 10),
		},
		Security: SecurityConfig{
			FilterEnabled: getEnvBool("SECURITY_FILTER_ENABLED", true),
			MaxBodySizeMB: getEnvInt("SECURITY_MAX_BODY_SIZE_MB", 1),
		},
		Proxy: ProxyConfig{
			TrustProxy:     getEnvBool("TRUST_PROXY", false),
			TrustedProxies: getEnvStringSlice("TRUSTED_PROXIES", []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
		},
	}

	price, err := loadPrice()
	if err != nil {
		return nil, err
	}
	cfg.Payment.PriceWei = price

	// If DATABASE_URL is set, default to postgres; same for REDIS_ADDR.
	if cfg.Records.Postgres.URL != "" && cfg.Records.Backend == "memory" {
		cfg.Records.Backend = "postgres"
	}
	if cfg.Records.Redis.Addr != "" && cfg.Records.Backend == "memory" {
		cfg.Records.Backend = "redis"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadPrice reads the expected price from PRICE_WEI (integer wei) or
// PRICE_ETH (decimal ether). PRICE_WEI wins when both are set.
func loadPrice() (*big.Int, error) {
	if v := os.Getenv("PRICE_WEI"); v != "" {
		price, err := wei.ParseWei(v)
		if err != nil {
			return nil, fmt.Errorf("PRICE_WEI: %w", err)
		}
		return price, nil
	}
	if v := os.Getenv("PRICE_ETH"); v != "" {
		price, err := wei.ParseEther(v)
		if err != nil {
			return nil, fmt.Errorf("PRICE_ETH: %w", err)
		}
		return price, nil
	}
	return nil, errors.New("either PRICE_WEI or PRICE_ETH must be set")
}

// Validate checks the loaded configuration, reporting every bad field.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return err
		}
		var fields []string
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
	}
	if c.Payment.PriceWei == nil || c.Payment.PriceWei.Sign() < 0 {
		return errors.New("invalid configuration: price must be a non-negative wei amount")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
