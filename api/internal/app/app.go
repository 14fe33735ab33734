// Package app assembles the shared runtime of both binaries from a Config.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"esl-toolkit/api/internal/config"
	"esl-toolkit/api/internal/handle"
	"esl-toolkit/api/internal/llm"
	"esl-toolkit/api/internal/llm/gemini"
	"esl-toolkit/api/internal/session"
	"esl-toolkit/api/internal/store"
	"esl-toolkit/api/internal/toolkit"
)

type App struct {
	Cfg *config.Config
	Log *zap.Logger

	Channel llm.Channel
	Service *toolkit.Service

	DB          *sql.DB
	Generations *store.GenerationRepo
	Awards      *store.AwardRepo

	Redis    *redis.Client
	Hub      *session.Hub
	Sessions session.Store

	closers []func() error
}

// Build connects to Gemini and, when configured, PostgreSQL and Redis.
// Without a database history is disabled; without Redis award sessions live
// in memory.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{Cfg: cfg, Log: log}

	ch, err := gemini.New(ctx, cfg.APIKey)
	if err != nil {
		return nil, err
	}
	a.Channel = ch
	a.closers = append(a.closers, ch.Close)

	if dsn := store.ResolveDSN(cfg.DatabaseURL); dsn != "" {
		db, err := store.Open(ctx, dsn)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		if err := store.Migrate(ctx, db); err != nil {
			_ = a.Close()
			return nil, err
		}
		a.DB = db
		a.Generations = store.NewGenerationRepo(db)
		a.Awards = store.NewAwardRepo(db)
		log.Info("db connected", zap.String("dsn", store.SafeDSNSummary(dsn)))
	} else {
		log.Info("no database configured, history disabled")
	}

	a.Hub = session.NewHub(log)
	var base session.Store = session.NewMemory(cfg.SessionTTL)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			_ = a.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		a.closers = append(a.closers, rdb.Close)
		a.Redis = rdb
		base = session.NewRedis(rdb, cfg.SessionTTL)
		log.Info("award sessions in redis", zap.String("addr", cfg.RedisAddr))
	}
	a.Sessions = session.NewObserved(base, a.Hub)

	prompts, err := toolkit.LoadPrompts(cfg.PromptDir)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	opts := []toolkit.Option{
		toolkit.WithModels(cfg.TextModel, cfg.AudioModel),
		toolkit.WithPrompts(prompts),
	}
	if a.Generations != nil {
		opts = append(opts, toolkit.WithRecorder(a.Generations))
	}
	a.Service = toolkit.New(a.Channel, log, opts...)
	return a, nil
}

func (a *App) Handle() *handle.Handle {
	d := handle.Deps{
		Service:       a.Service,
		Sessions:      a.Sessions,
		Hub:           a.Hub,
		DB:            a.DB,
		Generations:   a.Generations,
		Awards:        a.Awards,
		Log:           a.Log,
		Timeout:       a.Cfg.RequestTimeout,
		MaxAudioBytes: int(a.Cfg.MaxVoiceBytes),
	}
	return handle.New(d)
}

// Close releases connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
