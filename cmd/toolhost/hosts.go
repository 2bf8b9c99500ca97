package main

import (
	"fmt"

	"github.com/felixgeelhaar/toolhost"
	"github.com/felixgeelhaar/toolhost/internal/config"
	"github.com/felixgeelhaar/toolhost/internal/tools/calculator"
	"github.com/felixgeelhaar/toolhost/internal/tools/echo"
	"github.com/felixgeelhaar/toolhost/internal/tools/weather"
	"github.com/felixgeelhaar/toolhost/middleware"
	"github.com/felixgeelhaar/toolhost/server"
)

// host is one of the servers the binary can run.
type host struct {
	command  string
	short    string
	info     toolhost.ServerInfo
	register func(rb *server.RegistryBuilder, cfg *config.Config, logger middleware.Logger) error
}

var hosts = []host{
	{
		command: "echo",
		short:   "Serve the echo tool",
		info:    toolhost.ServerInfo{Name: echo.ServerName, Version: echo.ServerVersion},
		register: func(rb *server.RegistryBuilder, _ *config.Config, _ middleware.Logger) error {
			echo.Register(rb)
			return nil
		},
	},
	{
		command: "calculator",
		short:   "Serve add, subtract, multiply and divide",
		info:    toolhost.ServerInfo{Name: calculator.ServerName, Version: calculator.ServerVersion},
		register: func(rb *server.RegistryBuilder, _ *config.Config, _ middleware.Logger) error {
			calculator.Register(rb)
			return nil
		},
	},
	{
		command: "weather",
		short:   "Serve get_weather backed by Open-Meteo",
		info:    toolhost.ServerInfo{Name: weather.ServerName, Version: weather.ServerVersion},
		register: func(rb *server.RegistryBuilder, cfg *config.Config, logger middleware.Logger) error {
			w := cfg.Weather
			client, err := weather.NewClient(weather.Options{
				BaseURL:  w.BaseURL,
				Timeout:  w.Timeout,
				Rate:     w.RateLimit.Rate,
				Burst:    w.RateLimit.Burst,
				Interval: w.RateLimit.Interval,
				Logger:   logger,
			})
			if err != nil {
				return err
			}
			weather.Register(rb, client, w.ForecastHours)
			return nil
		},
	},
}

func findHost(command string) (host, bool) {
	for _, h := range hosts {
		if h.command == command {
			return h, true
		}
	}
	return host{}, false
}

// serverInfo applies the configured identity overrides.
func (h host) serverInfo(cfg *config.Config) toolhost.ServerInfo {
	info := h.info
	if cfg.Server.Name != "" {
		info.Name = cfg.Server.Name
	}
	if cfg.Server.Version != "" {
		info.Version = cfg.Server.Version
	}
	return info
}

// registry declares and freezes the host's tools.
func (h host) registry(cfg *config.Config, logger middleware.Logger) (*server.Registry, error) {
	rb := server.NewRegistryBuilder()
	if err := h.register(rb, cfg, logger); err != nil {
		return nil, fmt.Errorf("%s: %w", h.command, err)
	}
	return rb.Build()
}

// dispatcher wires the registry and the configured middleware stack.
// otelOpts reach the OTel middleware when telemetry is enabled.
func (h host) dispatcher(cfg *config.Config, logger middleware.Logger, otelOpts ...middleware.OTelOption) (*toolhost.Dispatcher, error) {
	reg, err := h.registry(cfg, logger)
	if err != nil {
		return nil, err
	}

	info := h.serverInfo(cfg)
	stack := middleware.ProductionStack(middleware.StackOptions{
		Logger:         logger,
		MaxParamsBytes: cfg.Limits.MaxParamsBytes,
		Telemetry:      cfg.Telemetry.Enabled,
		OTel: append([]middleware.OTelOption{
			middleware.WithOTelServiceName(cfg.Telemetry.ServiceName),
		}, otelOpts...),
	})

	return toolhost.NewDispatcher(info, reg,
		toolhost.WithLogger(logger),
		toolhost.WithMiddleware(stack...),
	), nil
}
