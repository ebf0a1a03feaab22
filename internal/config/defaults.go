package config

import (
	"strings"
	"time"

	"github.com/brightwire/fixgate/pkg/sectorfile"
)

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills zero-valued fields with defaults. Explicit
// values already present in cfg are preserved.
func applyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyDirectoryDefaults(&cfg.Directory)
	applyMetricsDefaults(&cfg.Metrics)
	applyControlPlaneDefaults(&cfg.ControlPlane)
	applyBackupDefaults(&cfg.Backup)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyDirectoryDefaults(cfg *DirectoryConfig) {
	if cfg.Path == "" {
		cfg.Path = "./fixgate-directory.dat"
	}
	if cfg.SectorSize == 0 {
		cfg.SectorSize = sectorfile.DefaultSectorSize
	}
	if cfg.Capacity == 0 {
		cfg.Capacity = 64 * 1024 * 1024
	}
	if cfg.Codec == "" {
		cfg.Codec = "binary"
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
}

func applyControlPlaneDefaults(cfg *ControlPlaneConfig) {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
}

func applyBackupDefaults(cfg *BackupConfig) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
}
