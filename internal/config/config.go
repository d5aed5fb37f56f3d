package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// RPC settings
	RPCUrl       string
	ReqPerSecond int

	// Wallet
	WalletPrivateKey string
	FeeOwner         string

	// Catalog files; empty values fall back to the built-in defaults
	TokenListPath string
	PoolListPath  string

	// Quote behavior
	DefaultSlippage float64

	// Redis settings
	RedisAddr    string
	RedisEnabled bool

	// ClickHouse settings
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string
	ClickHouseEnabled  bool

	// HTTP client settings
	HTTPTimeout  time.Duration
	MaxRetries   int
	RetryBackoff time.Duration

	// API server
	ListenAddr string

	// Transaction confirmation
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
}

// Load reads configuration from the environment, sourcing a .env file first
// when one exists
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		// RPC
		RPCUrl:       getEnv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com"),
		ReqPerSecond: getIntEnv("RPC_REQ_PER_SECOND", 10),

		// Wallet
		WalletPrivateKey: getEnv("WALLET_PRIVATE_KEY", ""),
		FeeOwner:         getEnv("FEE_OWNER", ""),

		// Catalogs
		TokenListPath: getEnv("TOKEN_LIST_PATH", ""),
		PoolListPath:  getEnv("POOL_LIST_PATH", ""),

		// Quotes
		DefaultSlippage: getFloatEnv("DEFAULT_SLIPPAGE", 0.5),

		// Redis
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		RedisEnabled: getBoolEnv("REDIS_ENABLED", false),

		// ClickHouse
		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "exchange"),
		ClickHouseUsername: getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),
		ClickHouseEnabled:  getBoolEnv("CLICKHOUSE_ENABLED", false),

		// HTTP
		HTTPTimeout:  getDurationEnv("HTTP_TIMEOUT", 30*time.Second),
		MaxRetries:   getIntEnv("MAX_RETRIES", 5),
		RetryBackoff: getDurationEnv("RETRY_BACKOFF", 2*time.Second),

		// API
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),

		// Confirmation
		ConfirmTimeout: getDurationEnv("CONFIRM_TIMEOUT", 60*time.Second),
		PollInterval:   getDurationEnv("CONFIRM_POLL_INTERVAL", 2*time.Second),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getFloatEnv(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
