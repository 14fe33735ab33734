package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"esl-toolkit/api/internal/app"
	"esl-toolkit/api/internal/config"
	"esl-toolkit/api/internal/httpserver"
	"esl-toolkit/api/internal/logging"
	"esl-toolkit/api/internal/store"
)

func newServeCmd() *cobra.Command {
	var (
		port      string
		retention time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			log, err := logging.New(cfg.LogMode)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.Build(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					log.Warn("close", zap.Error(err))
				}
			}()

			if a.Generations != nil && retention > 0 {
				go purgeLoop(ctx, a.Generations, retention, log)
			}

			router := httpserver.NewRouter(a.Handle(), log, cfg.AllowedOrigins)
			return httpserver.New(":"+cfg.Port, router, log).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	cmd.Flags().DurationVar(&retention, "history-retention", 30*24*time.Hour, "delete generation history older than this; 0 keeps everything")
	return cmd
}

func purgeLoop(ctx context.Context, repo *store.GenerationRepo, olderThan time.Duration, log *zap.Logger) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		n, err := repo.PurgeOlderThan(ctx, olderThan)
		if err != nil {
			log.Warn("purge history", zap.Error(err))
		} else if n > 0 {
			log.Info("purged history", zap.Int64("rows", n))
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
