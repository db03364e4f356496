package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment   string              `mapstructure:"environment"` // "dev" or "prod"
	Server        ServerConfig        `mapstructure:"server"`
	CoinGecko     CoinGeckoConfig     `mapstructure:"coingecko"`
	ExchangeRates ExchangeRatesConfig `mapstructure:"exchange_rates"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Stream        StreamConfig        `mapstructure:"stream"`
	Affiliate     AffiliateConfig     `mapstructure:"affiliate"`
	Telegram      TelegramConfig      `mapstructure:"telegram"`
	Log           LogConfig           `mapstructure:"log"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Postgres      PostgresConfig      `mapstructure:"postgres"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type CoinGeckoConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	APIKey    string        `mapstructure:"api_key"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type ExchangeRatesConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	Backend      string        `mapstructure:"backend"` // "memory" or "redis"
	TTL          time.Duration `mapstructure:"ttl"`
	SingleFlight bool          `mapstructure:"single_flight"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type StreamConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
	Limit    int           `mapstructure:"limit"`
}

type AffiliateConfig struct {
	ClickRetentionDays int `mapstructure:"click_retention_days"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// DatabaseConfig selects the gorm dialect. "sqlite" is meant for local runs.
type DatabaseConfig struct {
	Driver     string `mapstructure:"driver"` // "postgres" or "sqlite"
	SQLitePath string `mapstructure:"sqlite_path"`
	CreateDB   bool   `mapstructure:"create_db"`
}

// Options defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "dev")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("coingecko.base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("coingecko.user_agent", "CryptoConverter/1.0")
	v.SetDefault("coingecko.timeout", 10*time.Second)

	v.SetDefault("exchange_rates.url", "https://api.exchangerate-api.com/v4/latest/USD")
	v.SetDefault("exchange_rates.timeout", 10*time.Second)

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", time.Minute)
	v.SetDefault("cache.single_flight", false)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.key_prefix", "cryptoconvert:")

	v.SetDefault("stream.enabled", true)
	v.SetDefault("stream.interval", 30*time.Second)
	v.SetDefault("stream.limit", 100)

	v.SetDefault("affiliate.click_retention_days", 365)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.sqlite_path", "data/cryptoconvert.db")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime", time.Hour)
	v.SetDefault("postgres.ssm_prefix", "/cryptoconvert/db/")
}

// Load loads application configuration using Viper.
// It reads config.yaml when one is found and overrides with environment variables
// (e.g. CACHE_TTL=30s, POSTGRES_HOST=db).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")

	if p := os.Getenv("CONFIG_PATH"); p != "" {
		v.AddConfigPath(p)
	}
	v.AddConfigPath("./config")
	if ex, err := os.Executable(); err == nil && !strings.Contains(ex, "go-build") {
		v.AddConfigPath(filepath.Join(filepath.Dir(ex), "../config"))
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Log.Environment == "" {
		cfg.Log.Environment = cfg.Environment
	}

	return &cfg, nil
}
