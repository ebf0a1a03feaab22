package commands

import (
	"fmt"

	"github.com/brightwire/fixgate/internal/config"
	"github.com/brightwire/fixgate/internal/logger"
	"github.com/brightwire/fixgate/internal/metrics"
	"github.com/brightwire/fixgate/pkg/directory"
	"github.com/brightwire/fixgate/pkg/identity"
	"github.com/brightwire/fixgate/pkg/recordcodec"
	"github.com/brightwire/fixgate/pkg/sectorfile"
)

// loadConfig loads and applies the process-wide logger from the
// config file named by the --config flag.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}

// openEngine opens the directory file named by cfg and rebuilds its
// in-memory index, registering a metrics sink if Prometheus metrics
// are enabled.
func openEngine(cfg *config.Config) (*directory.Engine, error) {
	region, err := sectorfile.OpenRegion(cfg.Directory.Path, cfg.Directory.Capacity)
	if err != nil {
		return nil, fmt.Errorf("open directory file: %w", err)
	}

	codec := codecForName(cfg.Directory.Codec)
	errorSink := directory.FuncErrorSink(func(err error, fields map[string]any) {
		logger.Error("directory recoverable error", append([]any{"error", err}, flattenFields(fields)...)...)
	})

	engine, err := directory.Open(region, cfg.Directory.SectorSize, codec, identity.NewCompositeKeyStrategy(), 0, errorSink)
	if err != nil {
		_ = region.Close()
		return nil, fmt.Errorf("open directory: %w", err)
	}

	if cfg.Metrics.Enabled {
		engine.SetMetrics(metrics.New(nil))
	}

	return engine, nil
}

func codecForName(name string) recordcodec.Codec {
	if name == "xdr" {
		return recordcodec.NewXDRCodec()
	}
	return recordcodec.NewBinaryCodec()
}

func flattenFields(fields map[string]any) []any {
	out := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		out = append(out, k, v)
	}
	return out
}
