package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SoyJotaGS/buscador-rrv-web/internal/api"
	"github.com/SoyJotaGS/buscador-rrv-web/internal/config"
	"github.com/SoyJotaGS/buscador-rrv-web/internal/server"
	"github.com/SoyJotaGS/buscador-rrv-web/internal/util"
)

func newServeCommand(a *app) *cobra.Command {
	var (
		port int
		dev  bool
		open bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API: /api/search, /api/search/stream (SSE), /api/export and /metrics.

--port only applies when config.toml does not set server.port. Without either, the
first free port from the default is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("port") && !a.info.PortSpecified {
				cfg.Server.Port = port
			} else if !a.info.PortSpecified {
				if free, err := util.FindAvailablePort(cfg.Server.Port, 20); err == nil {
					cfg.Server.Port = free
				}
			}
			if dev {
				cfg.Server.DevMode = true
			}
			if cmd.Flags().Changed("open") {
				cfg.Server.OpenBrowser = open
			}
			return runServe(cmd.Context(), a, cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (config.toml takes precedence)")
	cmd.Flags().BoolVar(&dev, "dev", false, "development mode")
	cmd.Flags().BoolVar(&open, "open", false, "open the browser once listening")
	return cmd
}

func runServe(ctx context.Context, a *app, cfg *config.AppConfig) error {
	if cfg.Source.Kind == config.SourceXLSX {
		dir, err := config.EnsureSourceDir(cfg)
		if err != nil {
			return fmt.Errorf("create source dir: %w", err)
		}
		a.logger.Info("reading workbooks", zap.String("dir", dir))
	}

	w, err := a.wire(ctx)
	if err != nil {
		return err
	}

	handler := api.NewHandler(w.service, api.StatusInfo{
		Version:         version,
		SourceKind:      w.source.Kind(),
		Marker:          w.service.Aggregator().Marker(),
		RegistryEnabled: cfg.Registry.Enabled,
	}, cfg.Export.DownloadTTL.Duration, a.logger)

	srv := server.NewServer(handler, server.Options{
		DevMode:  cfg.Server.DevMode,
		Gatherer: w.registry,
		Logger:   a.logger,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d/api/status", cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(addr)
	}()

	if cfg.Server.OpenBrowser {
		if err := util.OpenBrowser(url); err != nil {
			a.logger.Warn("could not open browser", zap.String("url", url), zap.Error(err))
		}
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
