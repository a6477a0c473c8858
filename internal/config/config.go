// Package config loads CLI settings from an optional config.toml, BANK_*
// environment variables and flag overrides, in increasing precedence.
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

const (
	EnvPrefix = "BANK"

	StoreKindKey         = "store.kind"
	StorePathKey         = "store.path"
	StoreEngineKey       = "store.engine"
	StoreDSNKey          = "store.dsn"
	StoreDataDirKey      = "store.data_dir"
	StoreMaxOpenConnsKey = "store.max_open_conns"
	CacheEnabledKey      = "cache.enabled"
	CacheTTLKey          = "cache.ttl"
	CacheRedisURLKey     = "cache.redis_url"
	LogLevelKey          = "log.level"
	LogFormatKey         = "log.format"

	StoreKindTOML = "toml"
	StoreKindSQL  = "sql"

	defaultDirName  = ".bank"
	defaultFileName = "config"
	defaultFileType = "toml"
)

type Config struct {
	Store StoreConfig
	Cache CacheConfig
	Log   LogConfig
}

type StoreConfig struct {
	Kind         string
	Path         string
	Engine       string
	DSN          string
	DataDir      string
	MaxOpenConns int
}

type CacheConfig struct {
	Enabled  bool
	TTL      time.Duration
	RedisURL string
}

type LogConfig struct {
	Level  string
	Format string
}

// New returns a viper instance with defaults and environment binding applied.
// configFile is read when set; otherwise ~/.bank/config.toml is read if present.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
		return v, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return v, nil
	}
	v.AddConfigPath(filepath.Join(homeDir, defaultDirName))
	v.SetConfigName(defaultFileName)
	v.SetConfigType(defaultFileType)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return v, nil
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault(StoreKindKey, StoreKindTOML)
	v.SetDefault(StoreEngineKey, "sqlite")
	v.SetDefault(StoreMaxOpenConnsKey, 0)
	v.SetDefault(CacheEnabledKey, false)
	v.SetDefault(CacheTTLKey, 5*time.Minute)
	v.SetDefault(LogLevelKey, "warn")
	v.SetDefault(LogFormatKey, "console")
}

// Load validates v and returns the typed configuration. Relative paths are
// kept as given; an empty data dir resolves to ~/.bank.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Store: StoreConfig{
			Kind:         strings.ToLower(strings.TrimSpace(v.GetString(StoreKindKey))),
			Path:         v.GetString(StorePathKey),
			Engine:       strings.ToLower(strings.TrimSpace(v.GetString(StoreEngineKey))),
			DSN:          v.GetString(StoreDSNKey),
			DataDir:      v.GetString(StoreDataDirKey),
			MaxOpenConns: v.GetInt(StoreMaxOpenConnsKey),
		},
		Cache: CacheConfig{
			Enabled:  v.GetBool(CacheEnabledKey),
			TTL:      v.GetDuration(CacheTTLKey),
			RedisURL: v.GetString(CacheRedisURLKey),
		},
		Log: LogConfig{
			Level:  v.GetString(LogLevelKey),
			Format: strings.ToLower(strings.TrimSpace(v.GetString(LogFormatKey))),
		},
	}

	var errs []error
	switch cfg.Store.Kind {
	case StoreKindTOML, StoreKindSQL:
	default:
		errs = append(errs, fmt.Errorf("%s must be %q or %q, got %q", StoreKindKey, StoreKindTOML, StoreKindSQL, cfg.Store.Kind))
	}
	if cfg.Store.MaxOpenConns < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", StoreMaxOpenConnsKey))
	}
	if cfg.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", CacheTTLKey))
	}
	switch cfg.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("%s must be console or json, got %q", LogFormatKey, cfg.Log.Format))
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}

	if cfg.Store.DataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.Store.DataDir = filepath.Join(homeDir, defaultDirName)
	}

	return cfg, nil
}
