package commands

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/brightwire/fixgate/internal/controlplane/api"
	"github.com/brightwire/fixgate/internal/logger"
	"github.com/brightwire/fixgate/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the admin HTTP API and, if enabled, the Prometheus metrics endpoint",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	engine, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	if cfg.Metrics.Enabled {
		engine.SetMetrics(metrics.New(prometheus.DefaultRegisterer))
		go serveMetrics(cfg.Metrics.Port)
	}

	if !cfg.ControlPlane.Enabled {
		logger.Info("control plane disabled, idling")
		select {}
	}

	if cfg.ControlPlane.JWTKey == "" {
		return errors.New("control_plane.jwt_key must be set when control_plane.enabled is true")
	}

	issuer, err := api.NewTokenIssuer(cfg.ControlPlane.JWTKey, 0)
	if err != nil {
		return fmt.Errorf("build token issuer: %w", err)
	}

	router := api.NewRouter(engine, issuer)
	addr := fmt.Sprintf(":%d", cfg.ControlPlane.Port)
	logger.Info("serving admin API", "addr", addr)
	return http.ListenAndServe(addr, router)
}

func serveMetrics(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	logger.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", "error", err)
	}
}
