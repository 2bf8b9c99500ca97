package main

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/toolhost/internal/config"
)

type rootOptions struct {
	configPath    string
	logLevel      string
	logFormat     string
	baseURL       string
	forecastHours int
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "toolhost",
		Short:         "Serve tools over line-delimited JSON-RPC on stdio",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to a YAML configuration file")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&opts.logFormat, "log-format", "", "log format: text or json")
	pf.StringVar(&opts.baseURL, "base-url", "", "weather provider forecast endpoint")
	pf.IntVar(&opts.forecastHours, "forecast-hours", 0, "hourly forecast entries listed by get_weather")

	for _, h := range hosts {
		root.AddCommand(newServeCmd(opts, h))
	}
	root.AddCommand(newToolsCmd(opts))

	return root
}

// loadConfig reads the configuration file and applies flag overrides.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}
	if opts.baseURL != "" {
		cfg.Weather.BaseURL = opts.baseURL
	}
	if opts.forecastHours != 0 {
		cfg.Weather.ForecastHours = opts.forecastHours
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
