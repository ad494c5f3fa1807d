package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"beacon-dashboard/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check the config file and report errors and warnings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := configPath
			if path == "" {
				p, err := config.EnsureUserConfig(dataDir())
				if err != nil {
					return err
				}
				path = p
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			_, vr := config.NormalizeAndValidate(cfg)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config: %s\n", path)
			for _, w := range vr.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			for _, e := range vr.Errors {
				fmt.Fprintf(out, "error: %s\n", e)
			}
			if err := vr.Err(); err != nil {
				return err
			}
			fmt.Fprintln(out, "ok")
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "default",
		Short: "Print the bundled default config",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write(config.DefaultYAML())
			return err
		},
	})
	return cmd
}
