package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/richmondnkrumah/Data-Scraper/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "data-scraper",
	Short: "Company data fusion and comparison service",
	Long:  "Resolves company names against market data APIs, scrapers and AI estimators, merges the answers with provenance, and compares two companies metric by metric.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
