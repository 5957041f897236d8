package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/kanap/cart-service/internal/manager"
	"github.com/joho/godotenv"
)

const (
	CatalogHTTP   = "http"
	CatalogSQLite = "sqlite"

	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config holds the cart service settings.
type Config struct {
	HTTPPort string

	CatalogURL        string
	CatalogSource     string // http or sqlite
	CatalogSQLitePath string
	CatalogTimeout    time.Duration

	CartBackend manager.Backend
	CartStore   string // memory or redis
	CartTTL     time.Duration

	RedisAddr     string
	RedisPassword string

	MongoURI    string
	MongoDBName string

	KafkaBrokers     []string
	KafkaOrdersTopic string

	LogLevel       string
	LogDevelopment bool

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Load reads an optional .env file from the working directory and then the
// environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		CatalogURL:        strings.TrimRight(getEnv("CATALOG_URL", "http://localhost:3000"), "/"),
		CatalogSource:     getEnv("CATALOG_SOURCE", CatalogHTTP),
		CatalogSQLitePath: getEnv("CATALOG_SQLITE_PATH", "catalog.db"),
		CartStore:         getEnv("CART_STORE", StoreMemory),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:       getEnv("MONGO_DB_NAME", "kanap"),
		KafkaOrdersTopic:  getEnv("KAFKA_ORDERS_TOPIC", "kanap-orders"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.CatalogTimeout, err = getDuration("CATALOG_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.CartTTL, err = getDuration("CART_TTL", 0); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.LogDevelopment, err = getBool("LOG_DEVELOPMENT", false); err != nil {
		return Config{}, err
	}
	if cfg.CartBackend, err = manager.ParseBackend(getEnv("CART_BACKEND", "local")); err != nil {
		return Config{}, fmt.Errorf("CART_BACKEND: %w", err)
	}

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	switch cfg.CatalogSource {
	case CatalogHTTP, CatalogSQLite:
	default:
		return Config{}, fmt.Errorf("CATALOG_SOURCE must be %q or %q, got %q", CatalogHTTP, CatalogSQLite, cfg.CatalogSource)
	}
	switch cfg.CartStore {
	case StoreMemory, StoreRedis:
	default:
		return Config{}, fmt.Errorf("CART_STORE must be %q or %q, got %q", StoreMemory, StoreRedis, cfg.CartStore)
	}

	return cfg, nil
}

// UsesRedis reports whether any component needs a Redis connection.
func (c Config) UsesRedis() bool {
	return c.CartStore == StoreRedis || c.CatalogSource == CatalogHTTP
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}
