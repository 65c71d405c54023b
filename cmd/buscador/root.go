package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "buscador",
		Short: "Search vehicle plates across RRV spreadsheets",
		Long: `buscador looks a plate up in every worksheet of the spreadsheets whose name
contains the configured marker (RRV by default), orders the matches from newest
to oldest and checks the plate against the external vehicle registry.

Spreadsheets come from a directory of .xlsx files or from Google Sheets shared
with a service account, see config.toml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default: config.toml beside the executable)")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(
		newServeCommand(a),
		newSearchCommand(a),
		newExportCommand(a),
		newVersionCommand(),
	)
	return cmd
}
