package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileYieldsDefaults(t *testing.T) {
	cfg := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Equal(t, DefaultAppConfig.Web.Port, cfg.Web.Port)
	assert.Equal(t, DefaultAppConfig.System.Workdir, cfg.System.Workdir)
}

func TestLoadConfigFileOverrides(t *testing.T) {
	cfile := filepath.Join(t.TempDir(), "orderport.yml")
	require.NoError(t, os.WriteFile(cfile, []byte(`
web:
  port: 9999
database:
  host: db.internal
`), 0o644))

	cfg := LoadConfig(cfile)
	assert.Equal(t, 9999, cfg.Web.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	// untouched sections keep defaults
	assert.Equal(t, DefaultAppConfig.System.Location, cfg.System.Location)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("ORDERPORT_WEB_PORT", "7777")
	t.Setenv("ORDERPORT_DB_HOST", "env-db")

	cfg := LoadConfig("")
	assert.Equal(t, 7777, cfg.Web.Port)
	assert.Equal(t, "env-db", cfg.Database.Host)
}

func TestDBConfigConfigured(t *testing.T) {
	assert.True(t, DefaultAppConfig.Database.Configured())

	empty := DBConfig{}
	assert.False(t, empty.Configured())

	placeholder := DBConfig{Host: "db.placeholder.example.com", Name: "x"}
	assert.False(t, placeholder.Configured())
}
