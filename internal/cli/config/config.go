package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/wikisql/wikisql/internal/dialect"
)

// Config represents the wikisql configuration
type Config struct {
	BatchSize   int       `mapstructure:"batch_size" yaml:"batch_size"`
	Language    string    `mapstructure:"language" yaml:"language"`
	SubEntities bool      `mapstructure:"sub_entities" yaml:"sub_entities"`
	Driver      string    `mapstructure:"driver" yaml:"driver"`
	Durable     bool      `mapstructure:"durable" yaml:"durable"`
	NoColor     bool      `mapstructure:"no_color" yaml:"no_color"`
	MetricsFile string    `mapstructure:"metrics_file" yaml:"metrics_file"`
	Log         LogConfig `mapstructure:"log" yaml:"log"`
	S3          S3Config  `mapstructure:"s3" yaml:"s3"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// S3Config represents access to s3:// dumps
type S3Config struct {
	Region    string `mapstructure:"region" yaml:"region"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	PathStyle bool   `mapstructure:"path_style" yaml:"path_style"`
}

// EnvPrefix prefixes every environment override, e.g. WIKISQL_BATCH_SIZE.
const EnvPrefix = "WIKISQL"

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"batch-size":   "batch_size",
	"language":     "language",
	"sub-entities": "sub_entities",
	"driver":       "driver",
	"durable":      "durable",
	"no-color":     "no_color",
	"metrics-file": "metrics_file",
	"log-level":    "log.level",
	"log-format":   "log.format",
}

// Load loads the configuration from wikisql.yaml in the working directory,
// or from path when set. Environment variables override the file and flags
// that were set explicitly override both.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("batch_size", 1000)
	v.SetDefault("language", "en")
	v.SetDefault("sub_entities", false)
	v.SetDefault("driver", "sqlite3")
	v.SetDefault("durable", false)
	v.SetDefault("no_color", false)
	v.SetDefault("metrics_file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.path_style", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("wikisql")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// ValidationError reports an invalid configuration value.
type ValidationError struct {
	Key   string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Key, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.BatchSize <= 0 {
		return &ValidationError{Key: "batch_size", Value: fmt.Sprint(cfg.BatchSize), Err: errors.New("must be positive")}
	}
	if cfg.Language == "" {
		return &ValidationError{Key: "language", Err: errors.New("must not be empty")}
	}
	if _, err := dialect.ForDriver(cfg.Driver); err != nil {
		return &ValidationError{Key: "driver", Value: cfg.Driver, Err: err}
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return &ValidationError{Key: "log.level", Value: cfg.Log.Level, Err: err}
	}
	switch cfg.Log.Format {
	case "console", "json":
	default:
		return &ValidationError{Key: "log.format", Value: cfg.Log.Format, Err: errors.New("must be 'console' or 'json'")}
	}
	return nil
}
