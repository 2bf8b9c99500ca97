package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/toolhost/middleware"
)

func newToolsCmd(opts *rootOptions) *cobra.Command {
	valid := make([]string, 0, len(hosts))
	for _, h := range hosts {
		valid = append(valid, h.command)
	}

	return &cobra.Command{
		Use:       "tools SERVER",
		Short:     "Print the tool descriptors of a server as JSON",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: valid,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, ok := findHost(args[0])
			if !ok {
				return fmt.Errorf("unknown server %q", args[0])
			}

			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			reg, err := h.registry(cfg, middleware.NopLogger{})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"tools": reg.List()})
		},
	}
}
