package handle

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"esl-toolkit/api/internal/gamify"
	"esl-toolkit/api/internal/session"
)

type createAwardResponse struct {
	ID    string            `json:"id"`
	State gamify.AwardState `json:"state"`
}

type toggleRequest struct {
	Category string `json:"category"`
}

// CreateAward extracts a rubric from text and opens an award session for it.
func (h *Handle) CreateAward(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ext := extractFrom(req.Text)
	if ext.Empty() {
		writeError(w, http.StatusUnprocessableEntity, "no gamification rubric found in text")
		return
	}
	id, st, err := h.sessions.Create(r.Context(), ext)
	if err != nil {
		h.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createAwardResponse{ID: id, State: st})
}

// GetAward answers the live session state, or the persisted final state once
// the session has expired.
func (h *Handle) GetAward(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, err := h.sessions.Get(r.Context(), id)
	if errors.Is(err, session.ErrNotFound) && h.awards != nil {
		if row, ferr := h.awards.Find(r.Context(), id); ferr == nil {
			writeJSON(w, http.StatusOK, row.State)
			return
		}
	}
	if err != nil {
		h.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handle) DeleteAward(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.sessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleAward flips one category. Unknown categories and finalized sessions
// answer the unchanged state.
func (h *Handle) ToggleAward(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	st, _, err := h.sessions.Toggle(r.Context(), chi.URLParam(r, "id"), req.Category)
	if err != nil {
		h.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handle) FinalizeAward(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cur, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		h.sessionError(w, err)
		return
	}
	if len(cur.Criteria) == 0 {
		writeError(w, http.StatusConflict, "nothing to award: rubric is empty")
		return
	}
	st, err := h.sessions.Finalize(r.Context(), id)
	if err != nil {
		h.sessionError(w, err)
		return
	}
	if h.awards != nil && !cur.Finalized {
		if err := h.awards.Upsert(r.Context(), id, "http", st); err != nil {
			h.log.Warn("persist award", zap.String("session_id", id), zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, st)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// AwardEvents streams award events for one session over a websocket until the
// client disconnects.
func (h *Handle) AwardEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.sessions.Get(r.Context(), id); err != nil {
		h.sessionError(w, err)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade", zap.Error(err))
		return
	}
	c := h.hub.Register(id, conn)
	defer h.hub.Unregister(c)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handle) sessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.log.Error("award session", zap.Error(err))
	writeError(w, http.StatusInternalServerError, err.Error())
}
