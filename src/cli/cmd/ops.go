package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sofmeright/cargoplug/src/host"
)

var opsCmd = &cobra.Command{
	Use:   "ops",
	Short: "List registered ops",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range host.All() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(opsCmd)
}
