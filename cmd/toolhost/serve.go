package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/toolhost"
	"github.com/felixgeelhaar/toolhost/internal/logging"
	"github.com/felixgeelhaar/toolhost/middleware"
	"github.com/felixgeelhaar/toolhost/transport"
)

func newServeCmd(opts *rootOptions, h host) *cobra.Command {
	return &cobra.Command{
		Use:   h.command,
		Short: h.short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			base, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			info := h.serverInfo(cfg)
			logger := base.With(middleware.F("server", info.Name))

			var otelOpts []middleware.OTelOption
			if cfg.Telemetry.Enabled {
				tel := newTelemetry(logger)
				defer func() {
					if err := tel.shutdown(context.Background()); err != nil {
						logger.Warn("telemetry shutdown", middleware.F("error", err))
					}
				}()
				otelOpts = tel.options()
			}

			d, err := h.dispatcher(cfg, logger, otelOpts...)
			if err != nil {
				return err
			}

			logger.Info("serving on stdio",
				middleware.F("version", info.Version),
				middleware.F("tools", d.Registry().Len()),
			)

			err = toolhost.ServeStdio(cmd.Context(), d,
				transport.WithStdin(cmd.InOrStdin()),
				transport.WithStdout(cmd.OutOrStdout()),
				transport.WithLogger(logger),
			)
			if errors.Is(err, context.Canceled) {
				logger.Info("interrupted")
				return nil
			}
			if err != nil {
				return err
			}

			logger.Info("stdin closed")
			return nil
		},
	}
}
