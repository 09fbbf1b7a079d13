// Package config loads runtime settings from defaults, an optional config
// file and LIGHTINGBOQ_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "LIGHTINGBOQ"

const (
	BackendMemory     = "memory"
	BackendBadger     = "badger"
	BackendPocketBase = "pocketbase"
	BackendPostgres   = "postgres"
)

type Config struct {
	Seed           bool              `mapstructure:"seed"`
	CurrencySymbol string            `mapstructure:"currency_symbol"`
	CompanyName    string            `mapstructure:"company_name"`
	Catalog        CatalogConfig     `mapstructure:"catalog"`
	WorkingSets    WorkingSetsConfig `mapstructure:"working_sets"`
	Versions       VersionsConfig    `mapstructure:"versions"`
}

type CatalogConfig struct {
	CacheSize int           `mapstructure:"cache_size"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

type WorkingSetsConfig struct {
	Backend    string `mapstructure:"backend"`
	BadgerPath string `mapstructure:"badger_path"`
}

type VersionsConfig struct {
	Backend     string `mapstructure:"backend"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("seed", true)
	v.SetDefault("currency_symbol", "₹")
	v.SetDefault("company_name", "")
	v.SetDefault("catalog.cache_size", 512)
	v.SetDefault("catalog.cache_ttl", "5m")
	v.SetDefault("working_sets.backend", BackendMemory)
	v.SetDefault("working_sets.badger_path", "")
	v.SetDefault("versions.backend", BackendPocketBase)
	v.SetDefault("versions.postgres_dsn", "")
}

// Load reads the config file at path (any format viper understands) when
// path is non-empty, then applies environment overrides such as
// LIGHTINGBOQ_VERSIONS_BACKEND. The result is validated.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.WorkingSets.Backend {
	case BackendMemory:
	case BackendBadger:
		if c.WorkingSets.BadgerPath == "" {
			return fmt.Errorf("working_sets.badger_path is required for the badger backend")
		}
	default:
		return fmt.Errorf("unknown working_sets.backend %q", c.WorkingSets.Backend)
	}

	switch c.Versions.Backend {
	case BackendPocketBase:
	case BackendPostgres:
		if c.Versions.PostgresDSN == "" {
			return fmt.Errorf("versions.postgres_dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown versions.backend %q", c.Versions.Backend)
	}

	if c.Catalog.CacheSize < 0 {
		return fmt.Errorf("catalog.cache_size must not be negative")
	}
	return nil
}
