// Package config loads gtcheck configuration with viper.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fwojciec/gtcheck/fs"
	"github.com/fwojciec/gtcheck/logger"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables, e.g. GTCHECK_DATA_DIR.
const EnvPrefix = "GTCHECK"

// Config holds the application's configuration values.
type Config struct {
	DataDir    string        `mapstructure:"data_dir" yaml:"data_dir"`
	SubrepoDir string        `mapstructure:"subrepo_dir" yaml:"subrepo_dir"`
	Color      string        `mapstructure:"color" yaml:"color"`
	Log        logger.Config `mapstructure:"log" yaml:"log"`
}

// RecordDir is where review records are stored.
func (c *Config) RecordDir() string {
	return filepath.Join(c.DataDir, "records")
}

// JournalDir is where decision journals are stored.
func (c *Config) JournalDir() string {
	return filepath.Join(c.DataDir, "journal")
}

// NoColor reports whether terminal styling is disabled.
func (c *Config) NoColor() bool {
	return c.Color == "never"
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", fs.DefaultDataDir())
	v.SetDefault("subrepo_dir", "")
	v.SetDefault("color", "auto")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stderr")
}

// Load reads configuration from defaults, an optional config file, and
// GTCHECK_* environment variables. An empty configFile looks for
// config.yaml in the data directory.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(v.GetString("data_dir"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	switch cfg.Color {
	case "auto", "always", "never":
	default:
		return nil, fmt.Errorf("color must be auto, always or never, got %q", cfg.Color)
	}
	if cfg.DataDir == "" {
		return nil, errors.New("data_dir must be set")
	}
	if cfg.SubrepoDir == "" {
		cfg.SubrepoDir = filepath.Join(cfg.DataDir, "subrepos")
	}
	return &cfg, nil
}
