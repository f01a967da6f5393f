// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Collects a snapshot, then renders; the scheduled entry point",
	Long: `Runs collect followed by render in one invocation. This is what the
scheduled job executes: when collection fails entirely the render step
is skipped and the previously published statistics stay in place.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := runCollect(cmd.Context(), cfg, logger); err != nil {
			return err
		}
		return runRender(cmd.Context(), cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
