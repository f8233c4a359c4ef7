package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/papertrader/internal/api"
	"github.com/rustyeddy/papertrader/internal/logger"
	"github.com/rustyeddy/papertrader/internal/metrics"
	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/market"
	"github.com/rustyeddy/papertrader/sim"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the paper-trading HTTP service",
	Long: `Start the HTTP API, the WebSocket quote stream and the stop-loss /
take-profit sweeper. SIGINT or SIGTERM shuts everything down gracefully.

Example:
  papertrader serve --config papertrader.yaml --addr :9090`,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "override server.addr from the config")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	j, err := journal.Open(cfg.JournalOptions())
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	reg := market.DefaultRegistry()
	feed := market.NewSimFeed(reg, cfg.Feed.Variation)
	engine := sim.NewEngine(reg, feed, j,
		sim.WithLogger(log.Named("engine")),
		sim.WithQuoteTimeout(cfg.QuoteTimeout()),
		sim.WithAccountDefaults(cfg.AccountDefaults()),
	)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		engine.SetObserver(m)
	}

	gin.SetMode(gin.ReleaseMode)
	srv := api.NewServer(engine, m, log.Named("http"), api.Options{
		Addr:           cfg.Server.Addr,
		HistoryLimit:   cfg.API.HistoryLimit,
		StreamInterval: cfg.StreamInterval(),
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout()))
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if iv := cfg.TriggerInterval(); iv > 0 {
		g.Go(func() error {
			runSweeper(ctx, engine, iv, log.Named("sweeper"))
			return nil
		})
	}

	log.Info("papertrader started",
		zap.String("addr", cfg.Server.Addr),
		zap.String("journal", cfg.Journal.Type),
		zap.Bool("metrics", cfg.Metrics.Enabled))
	return g.Wait()
}

// runSweeper closes triggered stop-loss and take-profit positions every
// interval until ctx is done.
func runSweeper(ctx context.Context, engine *sim.Engine, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			closed, err := engine.SweepTriggers(ctx)
			if err != nil && ctx.Err() == nil {
				log.Warn("trigger sweep failed", zap.Error(err))
			}
			if len(closed) > 0 {
				log.Info("triggered positions closed", zap.Strings("position_ids", closed))
			}
		}
	}
}
