package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full application configuration tree.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Rates    RatesConfig    `mapstructure:"rates"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig configures the relational store.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// AuthConfig configures token issuance and the at-rest cipher.
type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	Issuer        string        `mapstructure:"issuer"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
	EncryptionKey string        `mapstructure:"encryption_key"`
}

// CacheConfig configures the statistics cache and keyed store.
type CacheConfig struct {
	StatsTTL time.Duration `mapstructure:"stats_ttl"`
	Backend  string        `mapstructure:"backend"` // memory | database
}

// ChainConfig configures the block explorer integration.
type ChainConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RatesConfig configures currency rate refreshing.
type RatesConfig struct {
	Endpoint string   `mapstructure:"endpoint"`
	Pairs    []string `mapstructure:"pairs"`
	Schedule string   `mapstructure:"schedule"`
}

// SnapshotConfig configures the client snapshot mirror.
type SnapshotConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// LoadConfig reads configuration from an optional finbooks.yaml plus
// FINBOOKS_* environment variables, with sane defaults for local runs.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "finbooks.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 0)
	v.SetDefault("database.name", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")

	// Secrets default to empty so env-only values survive Unmarshal; viper
	// ignores AutomaticEnv for keys it has never seen.
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.encryption_key", "")
	v.SetDefault("auth.issuer", "finbooks")
	v.SetDefault("auth.token_ttl", 12*time.Hour)

	v.SetDefault("cache.stats_ttl", 5*time.Minute)
	v.SetDefault("cache.backend", "memory")

	v.SetDefault("chain.api_key", "")
	v.SetDefault("chain.timeout", 15*time.Second)

	v.SetDefault("rates.endpoint", "")
	v.SetDefault("rates.pairs", []string{"EUR/USD", "EUR/GBP", "EUR/TRY"})
	v.SetDefault("rates.schedule", "0 6 * * *")

	v.SetDefault("snapshot.dir", "snapshots")

	v.SetDefault("logging.level", "info")

	v.SetEnvPrefix("FINBOOKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("finbooks")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/finbooks")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret is required (set FINBOOKS_AUTH_JWT_SECRET)")
	}
	if cfg.Auth.EncryptionKey == "" {
		return nil, fmt.Errorf("auth.encryption_key is required (set FINBOOKS_AUTH_ENCRYPTION_KEY)")
	}

	return &cfg, nil
}
