package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var resolveRefresh bool

var resolveCmd = &cobra.Command{
	Use:   "resolve <company>",
	Short: "Resolve one company and print its record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		resolve := env.Resolver.Resolve
		if resolveRefresh {
			resolve = env.Resolver.Refresh
		}
		rec, err := resolve(ctx, args[0])
		if err != nil {
			return err
		}

		zap.L().Info("resolve: done",
			zap.String("company", rec.Name),
			zap.String("source", rec.DataSource),
		)
		return printJSON(rec)
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	resolveCmd.Flags().BoolVar(&resolveRefresh, "refresh", false, "bypass the cache and resolve afresh")
	rootCmd.AddCommand(resolveCmd)
}
