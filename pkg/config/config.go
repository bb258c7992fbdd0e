package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Broadcast BroadcastConfig `mapstructure:"broadcast"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Generator GeneratorConfig `mapstructure:"generator"`
}

type AppConfig struct {
	Port          string `mapstructure:"port"`
	Env           string `mapstructure:"env"` // e.g., "local", "prod"
	AllowedOrigin string `mapstructure:"allowed_origin"`
}

type LoggerConfig struct {
	Level       string `mapstructure:"level"`
	Encoding    string `mapstructure:"encoding"` // "json" or "console"
	Development bool   `mapstructure:"development"`
}

// FeedConfig describes the upstream streaming connection.
type FeedConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	URL           string        `mapstructure:"url"`
	Token         string        `mapstructure:"token"`
	WatchlistFile string        `mapstructure:"watchlist_file"`
	MinBackoff    time.Duration `mapstructure:"min_backoff"`
	MaxBackoff    time.Duration `mapstructure:"max_backoff"`
	PingInterval  time.Duration `mapstructure:"ping_interval"`
}

// UpstreamConfig describes the request/response lookup API.
type UpstreamConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	Token           string        `mapstructure:"token"`
	Timeout         time.Duration `mapstructure:"timeout"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"`
}

type BroadcastConfig struct {
	PortfolioInterval time.Duration `mapstructure:"portfolio_interval"`
	MarketInterval    time.Duration `mapstructure:"market_interval"`
	SendBuffer        int           `mapstructure:"send_buffer"`
}

type RedisConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	SnapshotTTL time.Duration `mapstructure:"snapshot_ttl"` // 0 keeps snapshots forever
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

// GeneratorConfig only applies to cmd/generator.
type GeneratorConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	BatchSize int           `mapstructure:"batch_size"`
}

// LoadConfig reads configuration from .env file, environment variables, and defaults.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// 1. Load .env file into System Environment (if it exists)
	if err := godotenv.Load(); err != nil {
		log.Println("Note: No .env file found, relying on System Env Vars")
	}

	// 2. Set Defaults
	setDefaults(v)

	// 3. Configure Viper to read Environment Variables ("feed.token" -> "FEED_TOKEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Explicitly Bind Env Vars to Keys so Unmarshal sees them
	bindEnv(v, "app.port", "app.env", "app.allowed_origin")
	bindEnv(v, "logger.level", "logger.encoding", "logger.development")
	bindEnv(v, "feed.enabled", "feed.url", "feed.token", "feed.watchlist_file",
		"feed.min_backoff", "feed.max_backoff", "feed.ping_interval")
	bindEnv(v, "upstream.base_url", "upstream.token", "upstream.timeout",
		"upstream.breaker_failures", "upstream.breaker_timeout")
	bindEnv(v, "broadcast.portfolio_interval", "broadcast.market_interval", "broadcast.send_buffer")
	bindEnv(v, "redis.enabled", "redis.addr", "redis.password", "redis.db", "redis.snapshot_ttl")
	bindEnv(v, "kafka.enabled", "kafka.brokers", "kafka.topic", "kafka.group_id")
	bindEnv(v, "generator.interval", "generator.batch_size")

	// 5. Unmarshal into Struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	// The lookup API shares the stream's key unless told otherwise.
	if cfg.Upstream.Token == "" {
		cfg.Upstream.Token = cfg.Feed.Token
	}

	// 6. Basic Validation
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", ":3001")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.allowed_origin", "http://localhost:5173")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")
	v.SetDefault("logger.development", false)

	v.SetDefault("feed.enabled", true)
	v.SetDefault("feed.url", "wss://ws.finnhub.io")
	v.SetDefault("feed.token", "")
	v.SetDefault("feed.watchlist_file", "")
	v.SetDefault("feed.min_backoff", time.Second)
	v.SetDefault("feed.max_backoff", 30*time.Second)
	v.SetDefault("feed.ping_interval", 45*time.Second)

	v.SetDefault("upstream.base_url", "https://finnhub.io/api/v1")
	v.SetDefault("upstream.token", "")
	v.SetDefault("upstream.timeout", 5*time.Second)
	v.SetDefault("upstream.breaker_failures", 5)
	v.SetDefault("upstream.breaker_timeout", 30*time.Second)

	v.SetDefault("broadcast.portfolio_interval", 5*time.Second)
	v.SetDefault("broadcast.market_interval", 10*time.Second)
	v.SetDefault("broadcast.send_buffer", 256)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.snapshot_ttl", time.Duration(0))

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "market_trades")
	v.SetDefault("kafka.group_id", "options-relay")

	v.SetDefault("generator.interval", 100*time.Millisecond)
	v.SetDefault("generator.batch_size", 3)
}

// Validate rejects settings the relay cannot run with.
func (c *Config) Validate() error {
	if c.Broadcast.PortfolioInterval <= 0 || c.Broadcast.MarketInterval <= 0 {
		return fmt.Errorf("broadcast intervals must be positive")
	}
	if c.Broadcast.SendBuffer <= 0 {
		return fmt.Errorf("broadcast send_buffer must be positive")
	}
	if c.Feed.MinBackoff <= 0 || c.Feed.MaxBackoff < c.Feed.MinBackoff {
		return fmt.Errorf("feed backoff must satisfy 0 < min_backoff <= max_backoff")
	}
	if o := c.App.AllowedOrigin; o != "" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
		return fmt.Errorf("app allowed_origin must start with http:// or https://, got %q", o)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka brokers cannot be empty")
	}
	return nil
}

// bindEnv is a helper to bind multiple keys at once
func bindEnv(v *viper.Viper, keys ...string) {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			log.Printf("Could not bind env var for key %s: %v", key, err)
		}
	}
}
