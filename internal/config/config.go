package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime settings read from the environment, an optional .env
// file and an optional config file.
type Config struct {
	Port           string        `mapstructure:"port"`
	GinMode        string        `mapstructure:"gin_mode"`
	DatabaseDriver string        `mapstructure:"database_driver"`
	DatabaseURL    string        `mapstructure:"database_url"`
	SessionSecret  string        `mapstructure:"session_secret"`
	MediaRoot      string        `mapstructure:"media_root"`
	SiteURL        string        `mapstructure:"site_url"`
	IndexCacheTTL  time.Duration `mapstructure:"index_cache_ttl"`
	LogLevel       string        `mapstructure:"log_level"`
	LogFormat      string        `mapstructure:"log_format"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("database_driver", DriverPostgres)
	v.SetDefault("database_url", "host=localhost user=postgres password=postgres dbname=yatube port=5432 sslmode=disable")
	v.SetDefault("session_secret", "secret_key_change_me")
	v.SetDefault("media_root", "./media")
	v.SetDefault("site_url", "http://localhost:8080")
	v.SetDefault("index_cache_ttl", 20*time.Second)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}

// Load reads configuration. path may be empty; when set it names a config
// file (yaml, toml, json, env) whose values sit below environment variables.
func Load(path string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.DatabaseDriver = strings.ToLower(cfg.DatabaseDriver)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is empty")
	}
	if c.IndexCacheTTL < 0 {
		return errors.New("INDEX_CACHE_TTL must not be negative")
	}
	return nil
}

// EnsureMediaRoot creates the upload directory if needed.
func (c *Config) EnsureMediaRoot() error {
	return os.MkdirAll(c.MediaRoot, 0o755)
}
