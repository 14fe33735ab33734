package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"esl-toolkit/api/internal/llm"
	"esl-toolkit/api/internal/toolkit"
	"esl-toolkit/api/internal/util"
)

var errTooLarge = errors.New("voice message is too large")

// acceptVoice takes the recording for a pronunciation form that is waiting
// for one. The download runs off the chat lock; the form counts as loading
// until it lands.
func (r *Router) acceptVoice(ctx context.Context, msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	st := r.state(cid)
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.loading {
		r.send(cid, "⏳ Still working on your previous request. Send /cancel to drop it.")
		return
	}
	if st.kind != toolkit.Pronunciation {
		r.send(cid, "Voice messages are used for pronunciation feedback. Start it with /pronunciation.")
		return
	}
	if _, ok := currentField(st); ok {
		r.send(cid, "Please answer the question above first.")
		return
	}

	fileID, mime, size := voiceFile(msg)
	if size > r.maxVoice() {
		r.send(cid, fmt.Sprintf("The recording is too large (max %d MB). Please send a shorter one.", r.maxVoice()>>20))
		return
	}
	st.loading = true
	seq := st.seq

	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		r.receiveVoice(ctx, cid, st, seq, fileID, mime)
	}()
}

func (r *Router) receiveVoice(ctx context.Context, cid int64, st *chatState, seq uint64, fileID, mime string) {
	data, err := r.download(ctx, fileID)

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.seq != seq {
		r.logger().Info("discarding stale voice message", zap.Int64("chat_id", cid))
		return
	}
	st.loading = false
	if err != nil {
		r.logger().Warn("voice download", zap.Int64("chat_id", cid), zap.Error(err))
		r.send(cid, "Could not download the recording: "+err.Error()+"\nPlease send it again.")
		return
	}
	st.audio = &llm.Clip{MIMEType: util.PickMIME(mime, "", data), Data: data}
	r.askNextLocked(cid, st)
}

func voiceFile(msg *tgbotapi.Message) (fileID, mime string, size int) {
	if v := msg.Voice; v != nil {
		return v.FileID, v.MimeType, v.FileSize
	}
	a := msg.Audio
	return a.FileID, a.MimeType, a.FileSize
}

func (r *Router) download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := r.Bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	limit := r.maxVoice()
	b, err := io.ReadAll(io.LimitReader(resp.Body, int64(limit)+1))
	if err != nil {
		return nil, err
	}
	if len(b) > limit {
		return nil, errTooLarge
	}
	return b, nil
}

func (r *Router) httpClient() *http.Client {
	if r.HTTPClient != nil {
		return r.HTTPClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}

func (r *Router) maxVoice() int {
	if r.MaxVoiceBytes <= 0 {
		return 10 << 20
	}
	return r.MaxVoiceBytes
}
