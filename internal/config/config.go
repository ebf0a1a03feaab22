// Package config loads the gateway's static configuration from a YAML
// config file, with environment variables (FIXGATE_*) overriding the
// values of keys the file sets, and built-in defaults for anything left
// unset. Command-line flags are not read, and environment variables are
// ignored for keys the file does not set or when no file is found.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the gateway's static configuration.
type Config struct {
	Logging      LoggingConfig      `mapstructure:"logging" yaml:"logging"`
	Directory    DirectoryConfig    `mapstructure:"directory" yaml:"directory"`
	Metrics      MetricsConfig      `mapstructure:"metrics" yaml:"metrics"`
	ControlPlane ControlPlaneConfig `mapstructure:"control_plane" yaml:"control_plane"`
	Backup       BackupConfig       `mapstructure:"backup" yaml:"backup"`
}

// LoggingConfig controls the process-wide logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// DirectoryConfig locates and sizes the session directory file.
type DirectoryConfig struct {
	// Path is the directory file's location on disk.
	Path string `mapstructure:"path" validate:"required" yaml:"path"`

	// SectorSize is the fixed sector size in bytes; must be a power of
	// two large enough to hold at least one record plus its checksum.
	SectorSize int64 `mapstructure:"sector_size" validate:"required,min=512" yaml:"sector_size"`

	// Capacity is the total mapped file size in bytes.
	Capacity int64 `mapstructure:"capacity" validate:"required,min=1" yaml:"capacity"`

	// Codec selects the record codec: "binary" (default) or "xdr".
	Codec string `mapstructure:"codec" validate:"omitempty,oneof=binary xdr" yaml:"codec"`
}

// MetricsConfig configures the Prometheus metrics HTTP endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// ControlPlaneConfig configures the admin HTTP API.
type ControlPlaneConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
	JWTKey  string `mapstructure:"jwt_key" yaml:"jwt_key"`
}

// BackupConfig holds a snapshot destination (a local path, or an
// "s3://" URI) and a timeout. Neither field is read by the reset or
// snapshot commands or the admin API, which take their destination from
// the --backup flag, the command argument, or the request body.
type BackupConfig struct {
	Destination string        `mapstructure:"destination" yaml:"destination"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Load reads configuration from configPath (or the default search
// path if empty), layers environment variables over the keys it sets
// and defaults over the rest, and validates the result.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if found {
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("config: unmarshal: %w", err)
		}
	}
	applyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// Validate runs struct-tag validation over cfg.
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("FIXGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(".")
	v.SetConfigName("fixgate")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("config: read config file: %w", err)
	}
	return true, nil
}

// Save writes cfg to path as YAML.
func Save(cfg *Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create directory: %w", err)
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: write: %w", err)
	}
	return nil
}
