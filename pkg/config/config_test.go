package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, CatalogSourceFile, cfg.Catalog.Source)
	assert.True(t, cfg.Form.KeepPlaceholderRow)
	assert.Equal(t, 3*time.Second, cfg.Scanner.StopTimeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.Scanner.DuplicateCooldown)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("HTTP_PORT", "9090")
	v.Set("CATALOG_SOURCE", "SQLite")
	v.Set("FORM_KEEP_PLACEHOLDER_ROW", "false")
	v.Set("SCANNER_DECODES_PER_SECOND", "2.5")
	v.Set("SCANNER_STOP_TIMEOUT", "500ms")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, CatalogSourceSQLite, cfg.Catalog.Source)
	assert.False(t, cfg.Form.KeepPlaceholderRow)
	assert.Equal(t, 2.5, cfg.Scanner.DecodesPerSecond)
	assert.Equal(t, 500*time.Millisecond, cfg.Scanner.StopTimeout)
}

func TestFromViper_InvalidValuesFallBackToDefaults(t *testing.T) {
	v := viper.New()
	v.Set("HTTP_PORT", "abc")
	v.Set("SCANNER_STOP_TIMEOUT", "pronto")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 3*time.Second, cfg.Scanner.StopTimeout)
}

func TestFromViper_UnknownCatalogSource(t *testing.T) {
	v := viper.New()
	v.Set("CATALOG_SOURCE", "firestore")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "invoices", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/invoices?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgresql://x@y/z"
	assert.Equal(t, "postgresql://x@y/z", c.ConnectionString())
}
