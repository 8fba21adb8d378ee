package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/simonvc/finreports/internal/cache"
	"github.com/simonvc/finreports/internal/chart"
	"github.com/simonvc/finreports/internal/config"
	"github.com/simonvc/finreports/internal/events"
	"github.com/simonvc/finreports/internal/events/kafka"
	"github.com/simonvc/finreports/internal/report"
	"github.com/simonvc/finreports/internal/server"
	"github.com/simonvc/finreports/internal/store"
	"github.com/simonvc/finreports/internal/store/postgres"
	"github.com/spf13/cobra"
)

var serveAddr string

// ledgerStore is what serve needs from a backing store.
type ledgerStore interface {
	server.Ledger
	report.LedgerReader
	chart.Source
	Close() error
}

func openStore(ctx context.Context, cfg config.AppConfig) (ledgerStore, error) {
	switch cfg.DBDriver {
	case "sqlite", "":
		return store.Open(cfg.DBPath)
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
		return postgres.Open(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.DBDriver)
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := config.GetLogger()
		if cmd.Flags().Changed("addr") {
			cfg.HTTPAddr = serveAddr
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx, cfg)
		if err != nil {
			return fmt.Errorf("open %s store: %w", cfg.DBDriver, err)
		}
		defer st.Close()

		charts := chart.NewRegistry(st)
		c, err := charts.Reload(ctx)
		if err != nil {
			return fmt.Errorf("load chart of accounts: %w", err)
		}
		logger.WithField("accounts", c.Len()).Info("chart of accounts loaded")

		opts := []report.Option{report.WithLogger(logger), report.WithSlowThreshold(cfg.SlowReport)}
		if cfg.RedisAddr != "" {
			rc := cache.NewRedis(cfg.RedisAddr, cfg.RedisPass, cfg.ReportCacheTTL)
			defer rc.Close()
			if err := rc.Ping(ctx); err != nil {
				config.LogError(logger, "cmd", "serve", "redis unreachable, report cache disabled", cfg.RedisAddr, err)
			} else {
				opts = append(opts, report.WithCache(rc))
			}
		}

		var publisher events.Publisher = events.Noop{}
		if len(cfg.KafkaBrokers) > 0 {
			publisher = kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
			logger.WithField("topic", cfg.KafkaTopic).Info("publishing ledger events")
		}
		defer publisher.Close()

		srv := server.New(st, report.NewService(st, charts, opts...), charts, server.Options{
			Addr:           cfg.HTTPAddr,
			CORSOrigins:    cfg.CORSOrigins,
			RequestTimeout: cfg.RequestTimeout,
			Events:         publisher,
			Logger:         logger,
		})
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8888", "Listen address")
	rootCmd.AddCommand(serveCmd)
}
