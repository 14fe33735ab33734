package telegram

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"esl-toolkit/api/internal/gamify"
	"esl-toolkit/api/internal/toolkit"
)

func (r *Router) startView(cid int64, kind toolkit.Kind) {
	v, err := toolkit.Lookup(kind)
	if err != nil {
		r.send(cid, err.Error())
		return
	}
	st := r.state(cid)
	st.mu.Lock()
	defer st.mu.Unlock()
	st.beginLocked(kind)
	r.send(cid, v.Title+"\n"+v.Subtitle)
	r.askNextLocked(cid, st)
}

// startPractice opens the pronunciation sub-flow on the last speaking exercise.
func (r *Router) startPractice(cid int64) {
	st := r.state(cid)
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.lastExercise == "" {
		r.send(cid, "Generate a speaking exercise first, or use /pronunciation.")
		return
	}
	exercise, level := st.lastExercise, st.lastLevel
	st.beginLocked(toolkit.Pronunciation)
	st.values["level"] = level
	st.values["exerciseText"] = exercise
	st.field = 2
	r.askNextLocked(cid, st)
}

func (r *Router) acceptText(cid int64, text string) {
	st := r.state(cid)
	st.mu.Lock()
	defer st.mu.Unlock()
	r.fillLocked(cid, st, text)
}

func (r *Router) acceptOption(cid int64, idx string) {
	st := r.state(cid)
	st.mu.Lock()
	defer st.mu.Unlock()
	f, ok := currentField(st)
	if !ok || f.Type != toolkit.FieldChoice {
		return
	}
	i, err := strconv.Atoi(idx)
	if err != nil || i < 0 || i >= len(f.Options) {
		return
	}
	r.fillLocked(cid, st, f.Options[i])
}

func currentField(st *chatState) (toolkit.Field, bool) {
	if st.kind == "" {
		return toolkit.Field{}, false
	}
	v, err := toolkit.Lookup(st.kind)
	if err != nil || st.field >= len(v.Fields) {
		return toolkit.Field{}, false
	}
	return v.Fields[st.field], true
}

func (r *Router) fillLocked(cid int64, st *chatState, raw string) {
	switch {
	case st.loading:
		r.send(cid, "⏳ Still working on your previous request. Send /cancel to drop it.")
		return
	case st.kind == "":
		r.sendWithKeyboard(cid, "Pick a tool first.", makeViewsKeyboard())
		return
	}
	f, ok := currentField(st)
	if !ok {
		if st.kind == toolkit.Pronunciation {
			r.send(cid, "Please send a voice message reading the exercise aloud.")
		}
		return
	}
	val, ok := f.Accept(raw)
	if !ok {
		r.send(cid, "That is not a valid "+f.Label+". "+fieldPrompt(f))
		return
	}
	st.values[f.Name] = val
	st.field++
	r.askNextLocked(cid, st)
}

func (r *Router) askNextLocked(cid int64, st *chatState) {
	if f, ok := currentField(st); ok {
		if f.Type == toolkit.FieldChoice && len(f.Options) > 0 {
			r.sendWithKeyboard(cid, fieldPrompt(f), makeOptionsKeyboard(f))
			return
		}
		r.send(cid, fieldPrompt(f))
		return
	}
	if st.kind == toolkit.Pronunciation && st.audio == nil {
		r.send(cid, "🎙 Now send a voice message reading this aloud:\n\n"+st.values["exerciseText"])
		return
	}
	r.submitLocked(cid, st)
}

func (r *Router) submitLocked(cid int64, st *chatState) {
	p, err := toolkit.Decode(st.kind, st.values)
	if err == nil {
		p.Audio = st.audio
		p, err = p.Normalize()
	}
	if err != nil {
		r.send(cid, toolkit.Result{Kind: st.kind, Err: err}.Message())
		st.beginLocked(st.kind)
		r.askNextLocked(cid, st)
		return
	}

	st.loading = true
	seq := st.seq
	_, _ = r.Bot.Request(tgbotapi.NewChatAction(cid, tgbotapi.ChatTyping))
	r.send(cid, "⏳ Generating…")

	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		r.generate(cid, st, seq, p)
	}()
}

func (r *Router) generate(cid int64, st *chatState, seq uint64, p toolkit.Params) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout())
	defer cancel()
	ctx = toolkit.WithSource(ctx, source(cid))

	res := r.Service.Generate(ctx, p)

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.seq != seq {
		r.logger().Info("discarding stale generation", zap.Int64("chat_id", cid), zap.String("kind", string(p.Kind)))
		return
	}
	st.loading = false
	st.resetLocked()

	if !res.OK() {
		r.sendWithKeyboard(cid, res.Message(), makeViewsKeyboard())
		return
	}
	if p.Kind != toolkit.SpeakingCoach {
		r.sendLong(cid, res.Text)
		return
	}

	sp := toolkit.SplitSpeaking(res)
	r.sendLong(cid, sp.Exercise)
	st.lastExercise = sp.Exercise
	st.lastLevel = string(p.Level)
	st.awards = nil
	if !sp.Extraction.Empty() {
		st.awards = gamify.NewAwards(sp.Extraction)
		st.awardSeq = st.seq
		st.awardKey = fmt.Sprintf("%s:%d", source(cid), st.awardSeq)
		state := st.awards.State()
		msg := tgbotapi.NewMessage(cid, formatAwards(state))
		if kb := makeAwardsKeyboard(state, st.awardSeq); kb != nil {
			msg.ReplyMarkup = *kb
		}
		if _, err := r.Bot.Send(msg); err != nil {
			r.logger().Warn("telegram send", zap.Int64("chat_id", cid), zap.Error(err))
		}
	}
	r.sendWithKeyboard(cid, "Want feedback on how you read it?", makePracticeKeyboard())
}

func source(cid int64) string {
	return "tg:" + strconv.FormatInt(cid, 10)
}
