package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/02loveslollipop/blume-airquality-viewer/internal/blume"
	"github.com/02loveslollipop/blume-airquality-viewer/internal/config"
	"github.com/02loveslollipop/blume-airquality-viewer/internal/db"
	"github.com/02loveslollipop/blume-airquality-viewer/internal/ingest"
	"github.com/02loveslollipop/blume-airquality-viewer/internal/logging"
	httpserver "github.com/02loveslollipop/blume-airquality-viewer/services/api/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.New(cfg, "api")
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := db.Open(ctx, cfg)
	if err != nil {
		logger.Error("db connection error", "driver", cfg.DBDriver, "err", err)
		os.Exit(1)
	}
	defer store.Close()

	client := blume.NewClient(cfg.RequestTimeout, cfg.MaxBodyBytes)
	svc := ingest.NewService(store, client, cfg, logger)

	srv := httpserver.New(cfg, store, svc, logger)
	logger.Info("REST API listening", "addr", cfg.ListenAddr(), "driver", cfg.DBDriver)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
