package config

import (
	"strings"
	"testing"
)

func TestValidate_DefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Directory.Path = "./directory.dat"

	if err := Validate(cfg); err != nil {
		t.Errorf("default config should be valid, got: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := defaultConfig()
	cfg.Directory.Path = "./directory.dat"
	cfg.Logging.Level = "VERBOSE"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("error = %v, want an 'oneof' validation error", err)
	}
}

func TestValidate_InvalidControlPlanePort(t *testing.T) {
	cfg := defaultConfig()
	cfg.Directory.Path = "./directory.dat"
	cfg.ControlPlane.Port = 70000

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for out-of-range port")
	}
}

func TestValidate_MissingDirectoryPath(t *testing.T) {
	cfg := defaultConfig()
	cfg.Directory.Path = ""

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for empty directory path")
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.Level = "debug"
	cfg.Directory.SectorSize = 8192

	applyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Logging.Level = %q, want normalized DEBUG", cfg.Logging.Level)
	}
	if cfg.Directory.SectorSize != 8192 {
		t.Errorf("Directory.SectorSize = %d, want preserved 8192", cfg.Directory.SectorSize)
	}
	if cfg.Directory.Capacity == 0 {
		t.Error("Directory.Capacity default not applied")
	}
}
