// Package config loads fieldform settings from fieldform.yaml, FIELDFORM_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileName = "fieldform"
	configFileType = "yaml"
	envPrefix      = "FIELDFORM"
)

// Keys.
const (
	KeySchema         = "schema"
	KeyStore          = "store"
	KeyStorePath      = "store_path"
	KeyRedisAddr      = "redis.addr"
	KeyRedisPassword  = "redis.password"
	KeyRedisDB        = "redis.db"
	KeyRedisTTL       = "redis.ttl"
	KeyLogLevel       = "log_level"
	KeyHTTPPort       = "http.port"
	KeyEncryptionKey  = "encryption_key"
	KeyFallbackKeys   = "encryption_fallback_keys"
	KeyRedactFields   = "redact_fields"
	KeyLockTTL        = "lock_ttl"
	KeyMetricsEnabled = "metrics"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Config is the resolved configuration.
type Config struct {
	// Schema is a metamodel file (.yaml, .yml, .json) or a directory of
	// definition documents.
	Schema    string `mapstructure:"schema"`
	Store     string `mapstructure:"store"`
	StorePath string `mapstructure:"store_path"`

	Redis RedisConfig `mapstructure:"redis"`
	HTTP  HTTPConfig  `mapstructure:"http"`

	LogLevel string `mapstructure:"log_level"`
	Metrics  bool   `mapstructure:"metrics"`

	EncryptionKey          string        `mapstructure:"encryption_key"`
	EncryptionFallbackKeys []string      `mapstructure:"encryption_fallback_keys"`
	RedactFields           []string      `mapstructure:"redact_fields"`
	LockTTL                time.Duration `mapstructure:"lock_ttl"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type HTTPConfig struct {
	Port string `mapstructure:"port"`
}

func defaults(v *viper.Viper) {
	v.SetDefault(KeySchema, "form.yaml")
	v.SetDefault(KeyStore, StoreFile)
	v.SetDefault(KeyStorePath, ".fieldform/sessions")
	v.SetDefault(KeyRedisAddr, "localhost:6379")
	v.SetDefault(KeyRedisDB, 0)
	v.SetDefault(KeyRedisTTL, time.Duration(0))
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyHTTPPort, "8080")
	v.SetDefault(KeyLockTTL, 30*time.Second)
	v.SetDefault(KeyMetricsEnabled, true)
}

// Load resolves the configuration. An empty path searches for fieldform.yaml in
// the working directory, and a missing file there is not an error. flags may
// be nil; flags that were set override file and environment values.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// bindFlags maps flag names to keys: dashes become underscores and
// "redis-addr" style names address nested keys.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		for _, group := range []string{"redis", "http"} {
			if strings.HasPrefix(key, group+"_") {
				key = group + "." + strings.TrimPrefix(key, group+"_")
			}
		}
		err = v.BindPFlag(key, f)
	})
	return err
}

// Validate checks values that cannot be checked by decoding alone.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreFile, StoreRedis, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q (want memory, file, redis or sqlite)", c.Store)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.EncryptionKey != "" {
		if _, _, err := c.Keys(); err != nil {
			return err
		}
	}
	return nil
}

// Level is the slog level named by LogLevel.
func (c *Config) Level() slog.Level {
	l, _ := parseLevel(c.LogLevel)
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// Keys decodes the active and fallback encryption keys. Keys are 32 bytes,
// given as 64 hex characters or standard base64.
func (c *Config) Keys() (active []byte, fallback [][]byte, err error) {
	active, err = decodeKey(c.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("encryption_key: %w", err)
	}
	for i, k := range c.EncryptionFallbackKeys {
		b, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("encryption_fallback_keys[%d]: %w", i, err)
		}
		fallback = append(fallback, b)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	if b, err := hex.DecodeString(s); err == nil && len(b) == 32 {
		return b, nil
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil && len(b) == 32 {
		return b, nil
	}
	return nil, errors.New("key must be 32 bytes, hex or base64 encoded")
}
