package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the engine.
type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Market MarketConfig `mapstructure:"market"`
	Store  StoreConfig  `mapstructure:"store"`
	Prices PricesConfig `mapstructure:"prices"`
	Kafka  KafkaConfig  `mapstructure:"kafka"`
}

type AppConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"` // "local", "prod"
}

type MarketConfig struct {
	OpenTime     string `mapstructure:"open_time"`
	CloseTime    string `mapstructure:"close_time"`
	Timezone     string `mapstructure:"timezone"`
	WeekdaysOnly bool   `mapstructure:"weekdays_only"`
	Holidays     bool   `mapstructure:"holidays"`
}

type StoreConfig struct {
	Driver      string `mapstructure:"driver"` // "memory" or "postgres"
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

type PricesConfig struct {
	Source    string `mapstructure:"source"` // "memory" or "redis"
	RedisAddr string `mapstructure:"redis_addr"`
	RedisDB   int    `mapstructure:"redis_db"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// Load reads configuration from a .env file, environment variables, and
// defaults, in that order of increasing precedence for the env vars.
func Load() (*Config, error) {
	v := viper.New()

	// Promote .env entries to real environment variables when present.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment variables")
	}

	v.SetDefault("app.port", ":8080")
	v.SetDefault("app.env", "local")

	v.SetDefault("market.open_time", "09:30")
	v.SetDefault("market.close_time", "16:00")
	v.SetDefault("market.timezone", "America/New_York")
	v.SetDefault("market.weekdays_only", true)
	v.SetDefault("market.holidays", false)

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.postgres_dsn", "")

	v.SetDefault("prices.source", "memory")
	v.SetDefault("prices.redis_addr", "localhost:6379")
	v.SetDefault("prices.redis_db", 0)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "order_settled")

	// Map dot-notation keys to underscore env vars (market.open_time ->
	// MARKET_OPEN_TIME).
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnv(v, "app.port", "app.env")
	bindEnv(v, "market.open_time", "market.close_time", "market.timezone", "market.weekdays_only", "market.holidays")
	bindEnv(v, "store.driver", "store.postgres_dsn")
	bindEnv(v, "prices.source", "prices.redis_addr", "prices.redis_db")
	bindEnv(v, "kafka.enabled", "kafka.brokers", "kafka.topic")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if cfg.Store.Driver == "postgres" && cfg.Store.PostgresDSN == "" {
		return nil, fmt.Errorf("store driver is postgres but STORE_POSTGRES_DSN is empty")
	}
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("kafka is enabled but no brokers configured")
	}
	return &cfg, nil
}

func bindEnv(v *viper.Viper, keys ...string) {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			log.Printf("could not bind env var for key %s: %v", key, err)
		}
	}
}
