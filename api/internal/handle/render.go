package handle

import (
	"net/http"
	"strings"

	"esl-toolkit/api/internal/gamify"
	"esl-toolkit/api/internal/render"
)

type textRequest struct {
	Text  string `json:"text"`
	Title string `json:"title,omitempty"`
}

type renderResponse struct {
	HTML string `json:"html"`
}

// Render converts model text to sanitized HTML. With ?format=print it answers
// a standalone printable page instead of JSON.
func (h *Handle) Render(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if r.URL.Query().Get("format") == "print" {
		title := strings.TrimSpace(req.Title)
		if title == "" {
			title = "ESL Teacher's AI Toolkit"
		}
		page, err := render.Document(title, req.Text)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(page))
		return
	}
	writeJSON(w, http.StatusOK, renderResponse{HTML: render.Safe(req.Text)})
}

// Extract answers the gamification extraction of text. Text holding the
// speaking separator is split first.
func (h *Handle) Extract(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, extractFrom(req.Text))
}

func extractFrom(text string) gamify.Extraction {
	if _, gm, ok := gamify.Split(text); ok {
		text = gm
	}
	return gamify.Extract(text)
}
