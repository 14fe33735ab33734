package handle

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// History lists recent generations. ?source= filters, ?limit= caps.
func (h *Handle) History(w http.ResponseWriter, r *http.Request) {
	if h.gens == nil {
		writeError(w, http.StatusServiceUnavailable, "history is disabled: no database configured")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := h.gens.Recent(r.Context(), r.URL.Query().Get("source"), limit)
	if err != nil {
		h.log.Error("history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

func (h *Handle) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Database: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Database: "ok"})
}
