package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/richmondnkrumah/Data-Scraper/internal/monitoring"
	"github.com/richmondnkrumah/Data-Scraper/internal/server"
	"github.com/richmondnkrumah/Data-Scraper/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  "Binds the first free port among the configured port and its fallbacks and serves the company and comparison API until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		env, err := initApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		ln, port, err := server.Listen(ctx, cfg.Server.Host, listenPorts(servePort, cfg.Server.Port, cfg.Server.FallbackPorts))
		if err != nil {
			return err
		}
		env.Collector.SetPort(port)

		srv := server.New(env.Resolver, env.Compare, env.Collector, server.Options{
			DevMode:        cfg.Server.DevMode,
			RequestTimeout: seconds(cfg.Server.RequestTimeoutSecs),
			MetricsPath:    cfg.Metrics.Path,
			Metrics:        env.Metrics,
		})

		zap.L().Info("server: listening",
			zap.String("host", cfg.Server.Host),
			zap.Int("port", port),
			zap.String("store", cfg.Store.Driver),
			zap.Bool("dev_mode", cfg.Server.DevMode),
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			store.NewSweeper(env.Store, time.Duration(cfg.Cache.RetentionHours)*time.Hour, 0).Run(gctx)
			return nil
		})
		if cfg.Monitoring.Enabled {
			g.Go(func() error {
				checker := monitoring.NewChecker(env.Collector, monitoring.NewAlerter(cfg.Monitoring), cfg.Monitoring)
				checker.Run(gctx)
				return nil
			})
		}
		g.Go(func() error {
			return server.Serve(gctx, ln, srv.Routes(), seconds(cfg.Server.ShutdownTimeoutSecs))
		})
		return g.Wait()
	},
}

// listenPorts puts the requested port first, then the fallbacks without
// repeats.
func listenPorts(flag, configured int, fallbacks []int) []int {
	first := configured
	if flag > 0 {
		first = flag
	}
	ports := []int{first}
	seen := map[int]bool{first: true}
	for _, p := range fallbacks {
		if p > 0 && !seen[p] {
			seen[p] = true
			ports = append(ports, p)
		}
	}
	return ports
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to try first (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}
