package config

import (
	"os"
	"strconv"
)

type Config struct {
	LogLevel  string
	LogFormat string

	DBType    string
	DBFile    string
	Bucket    string
	RedisAddr string
	CartKey   string

	CatalogURL string

	Address string
	Port    int
}

// Load reads GOMARKET_* environment variables, falling back to defaults
// for anything unset or unparsable.
func Load() Config {
	return Config{
		LogLevel:   getEnv("GOMARKET_LOG_LEVEL", "info"),
		LogFormat:  getEnv("GOMARKET_LOG_FORMAT", "text"),
		DBType:     getEnv("GOMARKET_DB_TYPE", "persistent"),
		DBFile:     getEnv("GOMARKET_DB_FILE", "cart.db"),
		Bucket:     getEnv("GOMARKET_DB_BUCKET", "cart"),
		RedisAddr:  getEnv("GOMARKET_REDIS_ADDR", "localhost:6379"),
		CartKey:    getEnv("GOMARKET_CART_KEY", "@GoMarketplace:products"),
		CatalogURL: getEnv("GOMARKET_CATALOG_URL", "http://localhost:3333"),
		Address:    getEnv("GOMARKET_ADDRESS", "localhost"),
		Port:       getEnvInt("GOMARKET_PORT", 5555),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}
