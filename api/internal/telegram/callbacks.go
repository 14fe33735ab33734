package telegram

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"esl-toolkit/api/internal/toolkit"
)

func (r *Router) handleCallback(ctx context.Context, cb tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.Message.Chat == nil {
		return
	}
	cid := cb.Message.Chat.ID
	msgID := cb.Message.MessageID
	_, _ = r.Bot.Request(tgbotapi.NewCallback(cb.ID, "")) // ack

	data := cb.Data
	switch {
	case strings.HasPrefix(data, cbView):
		r.startView(cid, toolkit.Kind(strings.TrimPrefix(data, cbView)))
	case strings.HasPrefix(data, cbOption):
		r.acceptOption(cid, strings.TrimPrefix(data, cbOption))
	case strings.HasPrefix(data, cbToggle):
		r.onToggle(cid, msgID, strings.TrimPrefix(data, cbToggle))
	case strings.HasPrefix(data, cbFinalize):
		r.onFinalize(ctx, cid, msgID, strings.TrimPrefix(data, cbFinalize))
	case data == cbPractice:
		r.startPractice(cid)
	}
}

// onToggle handles "<seq>:<index>".
func (r *Router) onToggle(cid int64, msgID int, payload string) {
	seq, idx, _ := strings.Cut(payload, ":")
	st := r.state(cid)
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.awards == nil {
		r.send(cid, "No active rubric. Generate a speaking exercise first.")
		return
	}
	if !st.currentRubricLocked(seq) {
		r.logger().Info("ignoring press on an old rubric", zap.Int64("chat_id", cid), zap.String("seq", seq))
		return
	}
	crit := st.awards.Extraction().Criteria
	i, err := strconv.Atoi(idx)
	if err != nil || i < 0 || i >= len(crit) {
		return
	}
	if !st.awards.Toggle(crit[i].Category) {
		return
	}
	r.editAwards(cid, msgID, st)
}

func (r *Router) onFinalize(ctx context.Context, cid int64, msgID int, seq string) {
	st := r.state(cid)
	st.mu.Lock()
	defer st.mu.Unlock()
	a := st.awards
	if a == nil || a.Finalized() || len(a.Extraction().Criteria) == 0 {
		return
	}
	if !st.currentRubricLocked(seq) {
		r.logger().Info("ignoring press on an old rubric", zap.Int64("chat_id", cid), zap.String("seq", seq))
		return
	}
	a.Finalize()
	r.editAwards(cid, msgID, st)

	state := a.State()
	if r.Awards != nil {
		if err := r.Awards.Upsert(ctx, st.awardKey, source(cid), state); err != nil {
			r.logger().Warn("persist award", zap.Int64("chat_id", cid), zap.Error(err))
		}
	}
	if state.BadgeUnlocked && state.Badge != nil {
		r.send(cid, "🎉 Congratulations! Badge unlocked: "+state.Badge.Name)
	}
}

func (r *Router) editAwards(cid int64, msgID int, st *chatState) {
	state := st.awards.State()
	edit := tgbotapi.NewEditMessageText(cid, msgID, formatAwards(state))
	if kb := makeAwardsKeyboard(state, st.awardSeq); kb != nil {
		edit.ReplyMarkup = kb
	} else {
		edit.ReplyMarkup = &tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	}
	if _, err := r.Bot.Send(edit); err != nil {
		r.logger().Warn("telegram edit", zap.Int64("chat_id", cid), zap.Error(err))
	}
}

// currentRubricLocked reports whether seq names the rubric the chat holds now.
func (st *chatState) currentRubricLocked(seq string) bool {
	n, err := strconv.ParseUint(seq, 10, 64)
	return err == nil && n == st.awardSeq
}
