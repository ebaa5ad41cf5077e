// Package config loads the rules core's runtime configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. MAGE_PROJECTION_CACHE_SIZE.
const EnvPrefix = "MAGE"

// Config is the complete configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Projection ProjectionConfig `mapstructure:"projection"`
	Simulation SimulationConfig `mapstructure:"simulation"`
}

// LoggingConfig selects the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
}

// ProjectionConfig tunes the projection cache.
type ProjectionConfig struct {
	// CacheSize bounds the number of projected views kept per cache.
	CacheSize int `mapstructure:"cache_size"`
}

// SimulationConfig tunes parallel scenario evaluation.
type SimulationConfig struct {
	// Workers is the number of scenarios projected at once.
	Workers int `mapstructure:"workers"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Projection: ProjectionConfig{
			CacheSize: 1024,
		},
		Simulation: SimulationConfig{
			Workers: 4,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("projection.cache_size", d.Projection.CacheSize)
	v.SetDefault("simulation.workers", d.Simulation.Workers)
}

// Load reads the YAML file at path, applies MAGE_ environment overrides and validates
// the result. An empty path or a missing file leaves the defaults in place.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !isNotExist(err) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// Validate rejects settings the rules core cannot run with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid logging.format %q", c.Logging.Format)
	}
	if c.Projection.CacheSize <= 0 {
		return fmt.Errorf("projection.cache_size must be positive, got %d", c.Projection.CacheSize)
	}
	if c.Simulation.Workers <= 0 {
		return fmt.Errorf("simulation.workers must be positive, got %d", c.Simulation.Workers)
	}
	return nil
}
