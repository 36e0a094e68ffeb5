// Package config loads qforms settings from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/njchilds90/qforms"
)

// Config holds all qforms configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Engine  EngineConfig  `yaml:"engine"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP tool server.
type ServerConfig struct {
	Addr              string `yaml:"addr"`
	ReadHeaderTimeout string `yaml:"read_header_timeout"`
	ReadTimeout       string `yaml:"read_timeout"`
	WriteTimeout      string `yaml:"write_timeout"`
	IdleTimeout       string `yaml:"idle_timeout"`
	MaxBodyBytes      int64  `yaml:"max_body_bytes"`
}

// EngineConfig configures the class number table.
type EngineConfig struct {
	Mode      string `yaml:"mode"` // parity, proper
	CacheSize int    `yaml:"cache_size"`
	Workers   int    `yaml:"workers"` // 0 means GOMAXPROCS
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: "5s",
			ReadTimeout:       "15s",
			WriteTimeout:      "15s",
			IdleTimeout:       "60s",
			MaxBodyBytes:      1 << 20,
		},
		Engine: EngineConfig{
			Mode:      "parity",
			CacheSize: 1024,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing file
// yields the defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies QFORMS_* environment variables.
func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("QFORMS_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if mode := os.Getenv("QFORMS_MODE"); mode != "" {
		c.Engine.Mode = mode
	}
	if level := os.Getenv("QFORMS_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if n, err := strconv.Atoi(os.Getenv("QFORMS_WORKERS")); err == nil {
		c.Engine.Workers = n
	}
}

func duration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

func (c *ServerConfig) GetReadHeaderTimeout() time.Duration {
	return duration(c.ReadHeaderTimeout, 5*time.Second)
}

func (c *ServerConfig) GetReadTimeout() time.Duration { return duration(c.ReadTimeout, 15*time.Second) }

func (c *ServerConfig) GetWriteTimeout() time.Duration {
	return duration(c.WriteTimeout, 15*time.Second)
}

func (c *ServerConfig) GetIdleTimeout() time.Duration { return duration(c.IdleTimeout, 60*time.Second) }

// CountMode parses Engine.Mode.
func (c *Config) CountMode() (qforms.CountMode, error) { return qforms.ParseCountMode(c.Engine.Mode) }

// TableOptions converts the engine settings to qforms options.
func (c *Config) TableOptions() ([]qforms.Option, error) {
	mode, err := c.CountMode()
	if err != nil {
		return nil, err
	}
	opts := []qforms.Option{qforms.WithMode(mode), qforms.WithCacheSize(c.Engine.CacheSize)}
	if c.Engine.Workers > 0 {
		opts = append(opts, qforms.WithWorkers(c.Engine.Workers))
	}
	return opts, nil
}

// ValidLevels lists the accepted logging levels.
var ValidLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr not configured")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("invalid max_body_bytes: %d", c.Server.MaxBodyBytes)
	}
	if _, err := c.CountMode(); err != nil {
		return fmt.Errorf("invalid engine mode: %w", err)
	}
	if c.Engine.CacheSize <= 0 {
		return fmt.Errorf("invalid cache_size: %d", c.Engine.CacheSize)
	}
	if c.Engine.Workers < 0 {
		return fmt.Errorf("invalid workers: %d", c.Engine.Workers)
	}

	validLevel := false
	for _, l := range ValidLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid logging level: %s (valid: %v)", c.Logging.Level, ValidLevels)
	}

	return nil
}
