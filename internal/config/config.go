// Package config holds the configuration for the wiredump tool. The
// codec and protocol packages take no configuration from here; they are
// wired through their own options.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/yukin371/lspwire/pkg/logger"
	"github.com/yukin371/lspwire/pkg/utils"
)

// Config holds all configuration for wiredump
type Config struct {
	Log  LogConfig  `mapstructure:"log"`
	Dump DumpConfig `mapstructure:"dump"`
}

// LogConfig holds logging preferences
type LogConfig struct {
	Level string `mapstructure:"level"` // "debug", "info", "warn", "error"
}

// DumpConfig holds frame dump output preferences
type DumpConfig struct {
	Format       string `mapstructure:"format"`        // "text" or "json"
	PreviewBytes int    `mapstructure:"preview_bytes"` // payload preview length in text format
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Dump: DumpConfig{
			Format:       "text",
			PreviewBytes: 80,
		},
	}
}

// Load loads configuration from file and environment variables. With an
// empty path the platform config directory is used; a missing file is
// not an error, defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		configDir, err := utils.GetConfigDir("lspwire")
		if err != nil {
			return nil, fmt.Errorf("failed to get config dir: %w", err)
		}
		if err := utils.EnsureDir(configDir); err != nil {
			return nil, fmt.Errorf("failed to create config dir: %w", err)
		}
		path = filepath.Join(configDir, "config.yaml")
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	setDefaults(v)

	if utils.FileExists(path) {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Environment variable overrides, e.g. LSPWIRE_DUMP_FORMAT=json
	v.SetEnvPrefix("LSPWIRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets default values in Viper
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("dump.format", "text")
	v.SetDefault("dump.preview_bytes", 80)
}

func (c *Config) validate() error {
	switch c.Dump.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid dump format %q: want \"text\" or \"json\"", c.Dump.Format)
	}
	if c.Dump.PreviewBytes < 0 {
		return fmt.Errorf("invalid dump preview_bytes %d: must not be negative", c.Dump.PreviewBytes)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel maps the configured level name to a logger level.
func (c *Config) LogLevel() (logger.LogLevel, error) {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return logger.DEBUG, nil
	case "info":
		return logger.INFO, nil
	case "warn":
		return logger.WARN, nil
	case "error":
		return logger.ERROR, nil
	}
	return logger.INFO, fmt.Errorf("invalid log level %q", c.Log.Level)
}
