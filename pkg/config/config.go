// Package config loads fredLedger settings from a YAML file and FREDLEDGER_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. FREDLEDGER_STORE_DSN.
const EnvPrefix = "FREDLEDGER"

// Config is the complete application configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Log    LogConfig    `mapstructure:"log"`
	Ledger LedgerConfig `mapstructure:"ledger"`
	Rates  RatesConfig  `mapstructure:"rates"`
}

type ServerConfig struct {
	Address       string        `mapstructure:"address"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type StoreConfig struct {
	// Driver is sqlite3, pgx or postgres.
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	Development bool   `mapstructure:"development"`
}

type LedgerConfig struct {
	// InstallmentRecompute is "full" or "remaining".
	InstallmentRecompute string `mapstructure:"installment_recompute"`
	NearMaturityDays     int    `mapstructure:"near_maturity_days"`
	BaseCurrency         string `mapstructure:"base_currency"`
}

type RatesConfig struct {
	// Source is static, settings or redis.
	Source     string        `mapstructure:"source"`
	StaticRate string        `mapstructure:"static_rate"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
	Redis      RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.sweep_interval", time.Hour)

	v.SetDefault("store.driver", "sqlite3")
	v.SetDefault("store.dsn", "fredledger.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.development", false)

	v.SetDefault("ledger.installment_recompute", "full")
	v.SetDefault("ledger.near_maturity_days", 30)
	v.SetDefault("ledger.base_currency", "IDR")

	v.SetDefault("rates.source", "settings")
	v.SetDefault("rates.static_rate", "1")
	v.SetDefault("rates.cache_ttl", 5*time.Minute)
	v.SetDefault("rates.redis.addr", "localhost:6379")
	v.SetDefault("rates.redis.db", 0)
	v.SetDefault("rates.redis.key_prefix", "fx:")
}

// New returns a viper instance with defaults and environment binding. When
// path is empty ./fredledger.yaml is used if present.
func New(path string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("fredledger")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration file (optional unless path is given) and
// applies environment overrides.
func Load(path string) (*Config, error) {
	v := New(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return Decode(v)
}

// Decode unmarshals and validates the settings held by v.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite3", "sqlite", "pgx", "postgres":
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	switch c.Ledger.InstallmentRecompute {
	case "full", "remaining":
	default:
		return fmt.Errorf("config: unknown installment_recompute %q", c.Ledger.InstallmentRecompute)
	}
	switch c.Rates.Source {
	case "static", "settings", "redis":
	default:
		return fmt.Errorf("config: unknown rates source %q", c.Rates.Source)
	}
	if c.Ledger.NearMaturityDays < 0 {
		return fmt.Errorf("config: near_maturity_days must not be negative")
	}
	if c.Ledger.BaseCurrency == "" {
		return fmt.Errorf("config: base_currency is required")
	}
	return nil
}
