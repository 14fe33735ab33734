// Command bot runs the toolkit as a Telegram bot, in webhook mode when
// WEBHOOK_URL is set and long polling otherwise. It also serves the HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"esl-toolkit/api/internal/app"
	"esl-toolkit/api/internal/config"
	"esl-toolkit/api/internal/httpserver"
	"esl-toolkit/api/internal/logging"
	"esl-toolkit/api/internal/telegram"
)

func main() {
	if err := run(); err != nil {
		_, _ = os.Stderr.WriteString("bot: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireBot(); err != nil {
		return err
	}
	log, err := logging.New(cfg.LogMode)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
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

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return err
	}
	bot.Debug = false
	log.Info("telegram bot authorized", zap.String("username", bot.Self.UserName))

	r := &telegram.Router{
		Bot:           bot,
		Service:       a.Service,
		Log:           log,
		History:       a.Generations,
		Awards:        a.Awards,
		MaxVoiceBytes: int(cfg.MaxVoiceBytes),
		Timeout:       cfg.RequestTimeout,
	}
	defer r.Wait()

	mux := http.NewServeMux()
	mux.Handle("/", httpserver.NewRouter(a.Handle(), log, cfg.AllowedOrigins))

	webhookURL := strings.TrimSpace(cfg.WebhookURL)
	if webhookURL != "" {
		path := "/webhook/" + shortHash(cfg.TelegramToken)
		if err := registerWebhook(bot, webhookURL, path); err != nil {
			return err
		}
		mux.HandleFunc(path, webhookHandler(ctx, bot, r, log))
		log.Info("webhook mode", zap.String("path", path))
	} else {
		if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			log.Warn("delete webhook", zap.Error(err))
		}
		go runPolling(ctx, bot, log, func(upd tgbotapi.Update) { r.HandleUpdate(ctx, upd) })
		log.Info("polling mode")
	}

	return httpserver.New("0.0.0.0:"+cfg.Port, mux, log).Run(ctx)
}

func registerWebhook(bot *tgbotapi.BotAPI, baseURL, path string) error {
	wh, err := tgbotapi.NewWebhook(strings.TrimRight(baseURL, "/") + path)
	if err != nil {
		return err
	}
	wh.DropPendingUpdates = true
	_, err = bot.Request(wh)
	return err
}

func webhookHandler(ctx context.Context, bot *tgbotapi.BotAPI, r *telegram.Router, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		upd, err := bot.HandleUpdate(req)
		if err != nil {
			log.Warn("bad webhook update", zap.Error(err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
		go r.HandleUpdate(ctx, *upd)
	}
}

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") {
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return time.Second
}

func runPolling(ctx context.Context, bot *tgbotapi.BotAPI, log *zap.Logger, handle func(tgbotapi.Update)) {
	offset := 0
	const (
		baseDelay = time.Second
		maxDelay  = 15 * time.Second
	)

	for {
		select {
		case <-ctx.Done():
			log.Info("polling stopped")
			return
		default:
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30

		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := min(max(retryDelayFromError(err), baseDelay), maxDelay)
			log.Warn("polling error", zap.Error(err), zap.Duration("retry_in", d))
			sleep(ctx, d)
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}
		if len(updates) == 0 {
			sleep(ctx, 200*time.Millisecond)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// shortHash is a 64-bit FNV-1a of s in hex, used as the secret webhook path.
func shortHash(s string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return fmt.Sprintf("%016x", h.Sum64())
}
