package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/qforms"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.GetReadHeaderTimeout())
	assert.Equal(t, 60*time.Second, cfg.Server.GetIdleTimeout())

	mode, err := cfg.CountMode()
	require.NoError(t, err)
	assert.Equal(t, qforms.CountParity, mode)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "qforms.yaml")
	cfg := DefaultConfig()
	cfg.Engine.Mode = "proper"
	cfg.Engine.Workers = 3
	cfg.Server.WriteTimeout = "2s"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
	assert.Equal(t, 2*time.Second, loaded.Server.GetWriteTimeout())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qforms.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  mode: proper\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "proper", cfg.Engine.Mode)
	assert.Equal(t, 1024, cfg.Engine.CacheSize)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qforms.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: [\n"), 0644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("QFORMS_ADDR", "127.0.0.1:9999")
	t.Setenv("QFORMS_MODE", "proper")
	t.Setenv("QFORMS_LOG_LEVEL", "debug")
	t.Setenv("QFORMS_WORKERS", "2")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	assert.Equal(t, "proper", cfg.Engine.Mode)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 2, cfg.Engine.Workers)
}

func TestDurations_FallBack(t *testing.T) {
	s := ServerConfig{ReadTimeout: "soon"}
	assert.Equal(t, 15*time.Second, s.GetReadTimeout())
	assert.Equal(t, 15*time.Second, s.GetWriteTimeout())
}

func TestValidate(t *testing.T) {
	tests := map[string]func(*Config){
		"empty addr": func(c *Config) { c.Server.Addr = "" },
		"body bytes": func(c *Config) { c.Server.MaxBodyBytes = 0 },
		"mode":       func(c *Config) { c.Engine.Mode = "exact" },
		"cache size": func(c *Config) { c.Engine.CacheSize = 0 },
		"workers":    func(c *Config) { c.Engine.Workers = -1 },
		"log level":  func(c *Config) { c.Logging.Level = "trace" },
	}
	for name, mutate := range tests {
		cfg := DefaultConfig()
		mutate(cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}

func TestTableOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.Mode = "proper"
	cfg.Engine.Workers = 2
	opts, err := cfg.TableOptions()
	require.NoError(t, err)

	table, err := qforms.NewTable(opts...)
	require.NoError(t, err)
	assert.Equal(t, qforms.CountProper, table.Mode())

	cfg.Engine.Mode = "exact"
	_, err = cfg.TableOptions()
	assert.Error(t, err)
}
