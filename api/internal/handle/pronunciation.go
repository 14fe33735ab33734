package handle

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"esl-toolkit/api/internal/llm"
	"esl-toolkit/api/internal/render"
	"esl-toolkit/api/internal/toolkit"
	"esl-toolkit/api/internal/util"
)

type pronunciationRequest struct {
	Level        string `json:"level"`
	ExerciseText string `json:"exerciseText"`
	// Audio is base64 or a data URL.
	Audio    string `json:"audio"`
	MIMEType string `json:"mimeType"`
}

// Pronunciation analyzes a recorded reading of exerciseText.
func (h *Handle) Pronunciation(w http.ResponseWriter, r *http.Request) {
	var req pronunciationRequest
	if err := decodeJSONLimit(w, r, &req, h.pronunciationBodyLimit()); err != nil {
		if tooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("audio exceeds %d bytes", h.maxAudio))
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var clip *llm.Clip
	if req.Audio != "" {
		data, hint, err := util.DecodeBase64MaybeDataURL(req.Audio)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad audio: "+err.Error())
			return
		}
		if len(data) > h.maxAudio {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("audio exceeds %d bytes", h.maxAudio))
			return
		}
		clip = &llm.Clip{MIMEType: util.PickMIME(req.MIMEType, hint, data), Data: data}
	}

	p, err := toolkit.Decode(toolkit.Pronunciation, map[string]string{
		"level":        req.Level,
		"exerciseText": req.ExerciseText,
	})
	if err == nil {
		p.Audio = clip
		_, err = p.Normalize()
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, generateResponse{Kind: toolkit.Pronunciation, Error: toolkit.Result{Kind: toolkit.Pronunciation, Err: err}.Message()})
		return
	}

	ctx, cancel := h.generationContext(r)
	defer cancel()

	res := h.svc.Generate(ctx, p)
	if !res.OK() {
		writeJSON(w, failureStatus(res.Err), generateResponse{Kind: toolkit.Pronunciation, Error: res.Message()})
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{
		Kind: toolkit.Pronunciation, OK: true, Text: res.Text, HTML: render.Safe(res.Text),
	})
}

// pronunciationBodyLimit fits maxAudio bytes of base64 audio plus the text
// fields and a data URL prefix.
func (h *Handle) pronunciationBodyLimit() int64 {
	return int64(base64.StdEncoding.EncodedLen(h.maxAudio)) + maxBodyBytes
}
