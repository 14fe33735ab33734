package handle

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"esl-toolkit/api/internal/gamify"
	"esl-toolkit/api/internal/render"
	"esl-toolkit/api/internal/toolkit"
)

type generateResponse struct {
	Kind  toolkit.Kind `json:"kind"`
	OK    bool         `json:"ok"`
	Text  string       `json:"text,omitempty"`
	HTML  string       `json:"html,omitempty"`
	Error string       `json:"error,omitempty"`

	// speaking coach only
	Exercise       string             `json:"exercise,omitempty"`
	ExerciseHTML   string             `json:"exerciseHtml,omitempty"`
	Gamification   string             `json:"gamification,omitempty"`
	Extraction     *gamify.Extraction `json:"extraction,omitempty"`
	AwardSessionID string             `json:"awardSessionId,omitempty"`
}

// Views lists the view registry.
func (h *Handle) Views(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toolkit.Views())
}

// Generate runs one view's generation from a JSON object of form values.
func (h *Handle) Generate(w http.ResponseWriter, r *http.Request) {
	kind := toolkit.Kind(chi.URLParam(r, "kind"))
	if !kind.Valid() || kind == toolkit.Pronunciation {
		writeError(w, http.StatusNotFound, "unknown view: "+string(kind))
		return
	}

	var values map[string]string
	if err := decodeJSON(r, &values); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := toolkit.Decode(kind, values)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, generateResponse{Kind: kind, Error: toolkit.Result{Kind: kind, Err: err}.Message()})
		return
	}

	ctx, cancel := h.generationContext(r)
	defer cancel()

	res := h.svc.Generate(ctx, p)
	if !res.OK() {
		writeJSON(w, failureStatus(res.Err), generateResponse{Kind: kind, Error: res.Message()})
		return
	}

	out := generateResponse{Kind: kind, OK: true, Text: res.Text, HTML: render.Safe(res.Text)}
	if kind == toolkit.SpeakingCoach {
		sp := toolkit.SplitSpeaking(res)
		out.Exercise = sp.Exercise
		out.ExerciseHTML = render.Safe(sp.Exercise)
		out.Gamification = sp.Gamification
		if !sp.Extraction.Empty() {
			ext := sp.Extraction
			out.Extraction = &ext
			id, _, err := h.sessions.Create(r.Context(), ext)
			if err != nil {
				h.log.Warn("create award session", zap.Error(err))
			} else {
				out.AwardSessionID = id
			}
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func failureStatus(err error) int {
	var verr *toolkit.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}
