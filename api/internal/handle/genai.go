package handle

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type genaiResponse struct {
	Text string `json:"text"`
}

// GenAI proxies a raw prompt to the text model.
func (h *Handle) GenAI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var body map[string]json.RawMessage
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Missing prompt in request body")
		return
	}
	var prompt string
	if raw, ok := body["prompt"]; !ok || json.Unmarshal(raw, &prompt) != nil || prompt == "" {
		writeError(w, http.StatusBadRequest, "Missing prompt in request body")
		return
	}

	ctx, cancel := h.generationContext(r)
	defer cancel()

	text, err := h.svc.Prompt(ctx, prompt)
	if err != nil {
		h.log.Error("genai failed", zap.Error(err))
		msg := err.Error()
		if msg == "" {
			msg = "Unknown error"
		}
		writeError(w, http.StatusInternalServerError, msg)
		return
	}
	writeJSON(w, http.StatusOK, genaiResponse{Text: text})
}
