// Package telegram drives the toolkit views from a Telegram chat: one form
// field per message, inline keyboards for choices and awards.
package telegram

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"esl-toolkit/api/internal/store"
	"esl-toolkit/api/internal/toolkit"
	"esl-toolkit/api/internal/util"
)

// messageLimit stays under Telegram's 4096 characters.
const messageLimit = 3900

// BotAPI is the part of *tgbotapi.BotAPI the router uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Router struct {
	Bot     BotAPI
	Service *toolkit.Service
	Log     *zap.Logger

	// History and Awards are optional.
	History *store.GenerationRepo
	Awards  *store.AwardRepo

	MaxVoiceBytes int
	Timeout       time.Duration
	HTTPClient    *http.Client

	states   sync.Map // chatID -> *chatState
	inflight sync.WaitGroup
}

var commandKinds = map[string]toolkit.Kind{
	"lesson":        toolkit.LessonPlanner,
	"worksheet":     toolkit.WorksheetGenerator,
	"feedback":      toolkit.FeedbackTool,
	"speaking":      toolkit.SpeakingCoach,
	"prodev":        toolkit.ProDev,
	"pronunciation": toolkit.Pronunciation,
}

const helpText = "ESL Teacher's AI Toolkit\n\n" +
	"Pick a tool below, or use /lesson, /worksheet, /feedback, /speaking, /prodev, /pronunciation.\n" +
	"/cancel stops the current form. /history lists your recent generations."

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(ctx, *upd.CallbackQuery)
		return
	}
	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	cid := msg.Chat.ID

	switch {
	case msg.IsCommand():
		r.HandleCommand(ctx, msg)
	case msg.Voice != nil || msg.Audio != nil:
		r.acceptVoice(ctx, msg)
	case strings.TrimSpace(msg.Text) != "":
		r.acceptText(cid, msg.Text)
	}
}

func (r *Router) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	cmd := msg.Command()
	if kind, ok := commandKinds[cmd]; ok {
		r.startView(cid, kind)
		return
	}
	switch cmd {
	case "start", "help", "views":
		r.sendWithKeyboard(cid, helpText, makeViewsKeyboard())
	case "cancel":
		st := r.state(cid)
		st.mu.Lock()
		st.resetLocked()
		st.awards = nil
		st.mu.Unlock()
		r.sendWithKeyboard(cid, "Cancelled. Pick a tool to start again.", makeViewsKeyboard())
	case "history":
		r.sendHistory(ctx, cid)
	case "health":
		r.send(cid, "✅ OK")
	default:
		r.send(cid, "Unknown command. Try /help.")
	}
}

func (r *Router) send(chatID int64, text string) {
	if _, err := r.Bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		r.logger().Warn("telegram send", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (r *Router) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := r.Bot.Send(msg); err != nil {
		r.logger().Warn("telegram send", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// sendLong splits text into messages Telegram accepts.
func (r *Router) sendLong(chatID int64, text string) {
	for _, part := range util.Chunk(text, messageLimit) {
		r.send(chatID, part)
	}
}

// Wait blocks until every started generation has been delivered or discarded.
func (r *Router) Wait() { r.inflight.Wait() }

func (r *Router) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

func (r *Router) timeout() time.Duration {
	if r.Timeout <= 0 {
		return 70 * time.Second
	}
	return r.Timeout
}
