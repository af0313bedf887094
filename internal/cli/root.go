// Package cli handles the command-line interface logic
// using the Cobra library.
package cli

import (
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tmmigrate",
		Short: "tmmigrate - migrate legacy T&M tracking data to the unified schema",
		Long: `tmmigrate reads the legacy projects, employees, crew logs, T&M tags and
materials collections, recomputes labor and material financials, remaps
references and writes the unified collections used by the new billing workflow.

The migration is additive: legacy collections are never modified. Re-running
it against a populated target duplicates data.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.AddCommand(NewMigrateCmd())

	return rootCmd
}
