// Package config loads parm-dump settings from a YAML file, PARM_*
// environment variables and defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/malaterre/GEMS-PARM-01/internal/options"
	"github.com/malaterre/GEMS-PARM-01/internal/output"
)

// EnvPrefix prefixes every environment override, e.g. PARM_BATCH_WORKERS.
const EnvPrefix = "PARM"

// Config holds every setting of the command line tool.
//
// Precedence, highest first: flags, PARM_* environment variables, the
// configuration file, defaults.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	Decode  DecodeConfig  `mapstructure:"decode" yaml:"decode"`
	Batch   BatchConfig   `mapstructure:"batch" yaml:"batch"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is any logrus level name (any case), e.g. debug, warning, trace.
	Level string `mapstructure:"level" validate:"required,loglevel" yaml:"level"`
	// Format is text or json.
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
}

// OutputConfig selects how results are printed.
type OutputConfig struct {
	Format output.Format `mapstructure:"format" validate:"required,oneof=table json yaml" yaml:"format"`
}

// DecodeConfig controls decoding.
type DecodeConfig struct {
	// Strict reports partially derived layouts as failures.
	Strict bool `mapstructure:"strict" yaml:"strict"`
}

// BatchConfig bounds the worker pool used for multi-file runs.
type BatchConfig struct {
	Workers int `mapstructure:"workers" validate:"min=1,max=256" yaml:"workers"`
}

// MetricsConfig configures the Prometheus textfile dump.
type MetricsConfig struct {
	// Textfile, when set, receives the decode metrics after a run.
	Textfile string `mapstructure:"textfile" yaml:"textfile,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Output:  OutputConfig{Format: output.FormatTable},
		Batch:   BatchConfig{Workers: 4},
	}
}

// Load reads configuration from path (optional), environment and defaults,
// then validates it. An explicit path that does not exist is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setupViper(v, Default())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks field constraints.
func Validate(cfg *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("loglevel", validLogLevel); err != nil {
		return err
	}
	return v.Struct(cfg)
}

// validLogLevel accepts exactly the names options.ParseLevel understands.
func validLogLevel(fl validator.FieldLevel) bool {
	_, err := options.ParseLevel(fl.Field().String())
	return err == nil
}

// Save writes cfg to path as YAML, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Apply configures log according to the logging settings.
func (c LoggingConfig) Apply(log *logrus.Logger) error {
	level, err := options.ParseLevel(c.Level)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	switch c.Format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// setupViper registers defaults for every key so that environment
// overrides apply even without a configuration file.
func setupViper(v *viper.Viper, defaults *Config) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigType("yaml")

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("output.format", defaults.Output.Format.String())
	v.SetDefault("decode.strict", defaults.Decode.Strict)
	v.SetDefault("batch.workers", defaults.Batch.Workers)
	v.SetDefault("metrics.textfile", defaults.Metrics.Textfile)
}

func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		formatDecodeHook(),
	)
}

// formatDecodeHook normalizes output format names such as "JSON" or "yml".
func formatDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(output.Format("")) {
			return data, nil
		}
		s, ok := data.(string)
		if !ok {
			return data, nil
		}
		return output.ParseFormat(s)
	}
}
