package main

import (
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Print a health snapshot of the store and providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		snap, err := env.Collector.Collect(ctx)
		if err != nil {
			return err
		}
		return printJSON(snap)
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
