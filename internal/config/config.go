// Package config loads classinfo settings from classinfo.yaml, CLASSINFO_*
// environment variables and command line flags.
package config

import (
	stderrors "errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/toyz/classinfo/internal/errors"
)

// Config represents the classinfo configuration
type Config struct {
	Classpath []string     `mapstructure:"classpath"`
	Scan      ScanConfig   `mapstructure:"scan"`
	Loader    LoaderConfig `mapstructure:"loader"`
	Server    ServerConfig `mapstructure:"server"`
	Log       LogConfig    `mapstructure:"log"`
	Output    OutputConfig `mapstructure:"output"`
}

// ScanConfig controls how the classpath is read
type ScanConfig struct {
	Workers     int  `mapstructure:"workers"`
	IncludeJars bool `mapstructure:"include_jars"`
}

// LoaderConfig configures the classloader used for type resolution
type LoaderConfig struct {
	CacheSize int      `mapstructure:"cache_size"`
	Bootstrap []string `mapstructure:"bootstrap"`
}

// ServerConfig configures the report server
type ServerConfig struct {
	Framework string `mapstructure:"framework"`
	Addr      string `mapstructure:"addr"`
}

// LogConfig configures structured logging
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// OutputConfig configures terminal output
type OutputConfig struct {
	Verbose bool `mapstructure:"verbose"`
	Quiet   bool `mapstructure:"quiet"`
}

// EnvPrefix is the prefix of environment overrides, e.g. CLASSINFO_SCAN_WORKERS
const EnvPrefix = "CLASSINFO"

var (
	frameworks = []string{"gin", "echo", "fiber"}
	logLevels  = []string{"debug", "info", "warn", "error"}
)

// New returns a viper instance with defaults and environment overrides set up
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("classpath", []string{"."})
	v.SetDefault("scan.workers", 4)
	v.SetDefault("scan.include_jars", true)
	v.SetDefault("loader.cache_size", 1024)
	v.SetDefault("loader.bootstrap", []string{})
	v.SetDefault("server.framework", "gin")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("output.verbose", false)
	v.SetDefault("output.quiet", false)

	v.SetConfigName("classinfo")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads classinfo.yaml from dir when present and decodes the result.
// Flags bound to v before the call take precedence over the file.
func Load(v *viper.Viper, dir string) (*Config, error) {
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return nil, errors.WrapConfigurationError("classinfo.yaml", "read", err)
		}
		// Config file not found - use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.WrapConfigurationError("classinfo.yaml", "decode", err)
	}
	cfg.Server.Framework = strings.ToLower(cfg.Server.Framework)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations
func Validate(cfg *Config) error {
	var multi *errors.MultipleErrors

	if cfg.Scan.Workers <= 0 {
		errors.AddToMultiple(&multi, errors.ConfigurationError("scan.workers",
			fmt.Sprintf("must be positive, got %d", cfg.Scan.Workers)))
	}
	if cfg.Loader.CacheSize <= 0 {
		errors.AddToMultiple(&multi, errors.ConfigurationError("loader.cache_size",
			fmt.Sprintf("must be positive, got %d", cfg.Loader.CacheSize)))
	}
	if !slices.Contains(frameworks, cfg.Server.Framework) {
		errors.AddToMultiple(&multi, errors.ConfigurationError("server.framework",
			fmt.Sprintf("unknown framework %q", cfg.Server.Framework)).
			WithSuggestion("Use one of: "+strings.Join(frameworks, ", ")))
	}
	if !slices.Contains(logLevels, cfg.Log.Level) {
		errors.AddToMultiple(&multi, errors.ConfigurationError("log.level",
			fmt.Sprintf("unknown level %q", cfg.Log.Level)).
			WithSuggestion("Use one of: "+strings.Join(logLevels, ", ")))
	}
	if cfg.Output.Verbose && cfg.Output.Quiet {
		errors.AddToMultiple(&multi, errors.ConfigurationError("output",
			"verbose and quiet cannot both be set"))
	}
	if len(cfg.Classpath) == 0 {
		errors.AddToMultiple(&multi, errors.ConfigurationError("classpath", "no entries"))
	}
	return multi.ErrorOrNil()
}
