package main

import (
	"github.com/spf13/cobra"
)

var compareChart string

var compareCmd = &cobra.Command{
	Use:   "compare <company1> <company2>",
	Short: "Compare two companies and print the result as JSON",
	Long:  "Resolves both companies, compares them metric by metric and prints the full comparison, or one chart projection with --chart.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		if compareChart != "" {
			data, err := env.Compare.Chart(ctx, args[0], args[1], compareChart)
			if err != nil {
				return err
			}
			return printJSON(data)
		}

		res, err := env.Compare.Compare(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

func init() {
	compareCmd.Flags().StringVar(&compareChart, "chart", "", "print one chart: finances, userMetrics, productRatings or detailed")
	rootCmd.AddCommand(compareCmd)
}
