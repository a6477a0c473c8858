package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)
	t.Setenv("BANK_STORE_ENGINE", "")

	v, err := New("")
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, StoreKindTOML, cfg.Store.Kind)
	assert.Equal(t, "sqlite", cfg.Store.Engine)
	assert.Empty(t, cfg.Store.Path)
	assert.Equal(t, filepath.Join(homeDir, ".bank"), cfg.Store.DataDir)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadReadsConfigFileFromHome(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)

	require.NoError(t, os.MkdirAll(filepath.Join(homeDir, ".bank"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(homeDir, ".bank", "config.toml"), []byte(`
[store]
kind = "sql"
engine = "postgres"
dsn = "host=db user=bank"
max_open_conns = 8

[cache]
enabled = true
ttl = "30s"
`), 0o600))

	v, err := New("")
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, StoreKindSQL, cfg.Store.Kind)
	assert.Equal(t, "postgres", cfg.Store.Engine)
	assert.Equal(t, "host=db user=bank", cfg.Store.DSN)
	assert.Equal(t, 8, cfg.Store.MaxOpenConns)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	configFile := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(configFile, []byte("[log]\nlevel = \"info\"\n"), 0o600))
	t.Setenv("BANK_LOG_LEVEL", "debug")
	t.Setenv("BANK_STORE_PATH", "/tmp/other.toml")

	v, err := New(configFile)
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/other.toml", cfg.Store.Path)
}

func TestNewMissingExplicitConfigFileFails(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	v := viper.New()
	SetDefaults(v)
	v.Set(StoreKindKey, "csv")
	v.Set(StoreMaxOpenConnsKey, -1)
	v.Set(CacheTTLKey, "0s")
	v.Set(LogFormatKey, "xml")

	_, err := Load(v)
	require.Error(t, err)
	assert.ErrorContains(t, err, StoreKindKey)
	assert.ErrorContains(t, err, StoreMaxOpenConnsKey)
	assert.ErrorContains(t, err, CacheTTLKey)
	assert.ErrorContains(t, err, LogFormatKey)
}
