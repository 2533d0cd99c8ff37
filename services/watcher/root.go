package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/02loveslollipop/blume-airquality-viewer/internal/blume"
	"github.com/02loveslollipop/blume-airquality-viewer/internal/config"
	"github.com/02loveslollipop/blume-airquality-viewer/internal/db"
	"github.com/02loveslollipop/blume-airquality-viewer/internal/ingest"
	"github.com/02loveslollipop/blume-airquality-viewer/internal/logging"
)

var (
	dryRun bool

	cfg    config.Config
	store  db.Repository
	svc    *ingest.Service
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "watcher",
	Short: "Crawl BLUME daily air-quality pages into the measurement store",
	Long: `Watcher downloads the daily value tables of the Berlin air-quality
network (BLUME), keeps the raw pages and extracts one measurement per
station and day.

EXAMPLES:

  watcher crawl                              # 2008-01-01 until today
  watcher crawl --from 2014-01-01 --to 2014-12-31 --delay 2s
  watcher fetch 2014-05-13                   # always download again
  watcher reparse                            # parse every stored page

Configuration comes from .env, blume.yml and the environment
(DATABASE_URL, DB_DRIVER, SOURCE_URL_TEMPLATE, CRAWL_DELAY, ...).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		if dryRun {
			cfg.DryRun = true
		}

		logger = logging.New(cfg, "watcher")
		slog.SetDefault(logger)

		store, err = db.Open(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("db connection error: %w", err)
		}

		client := blume.NewClient(cfg.RequestTimeout, cfg.MaxBodyBytes)
		svc = ingest.NewService(store, client, cfg, logger)
		if cfg.DryRun {
			logger.Info("dry-run: nothing will be written")
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if store != nil {
			return store.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "fetch and parse without writing to the store")
	rootCmd.AddCommand(crawlCmd, fetchCmd, reparseCmd)
}
