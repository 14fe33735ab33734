// Package handle implements the JSON HTTP endpoints over the toolkit core.
package handle

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"esl-toolkit/api/internal/session"
	"esl-toolkit/api/internal/store"
	"esl-toolkit/api/internal/toolkit"
)

const (
	defaultTimeout = 70 * time.Second
	maxBodyBytes   = 4 << 20
)

// Deps are the collaborators of Handle. DB, Generations and Awards may be
// nil when persistence is disabled.
type Deps struct {
	Service     *toolkit.Service
	Sessions    session.Store
	Hub         *session.Hub
	DB          *sql.DB
	Generations *store.GenerationRepo
	Awards      *store.AwardRepo
	Log         *zap.Logger
	Timeout     time.Duration
	// MaxAudioBytes caps decoded pronunciation audio.
	MaxAudioBytes int
}

type Handle struct {
	svc      *toolkit.Service
	sessions session.Store
	hub      *session.Hub
	db       *sql.DB
	gens     *store.GenerationRepo
	awards   *store.AwardRepo
	log      *zap.Logger
	timeout  time.Duration
	maxAudio int
}

func New(d Deps) *Handle {
	h := &Handle{
		svc:      d.Service,
		sessions: d.Sessions,
		hub:      d.Hub,
		db:       d.DB,
		gens:     d.Generations,
		awards:   d.Awards,
		log:      d.Log,
		timeout:  d.Timeout,
		maxAudio: d.MaxAudioBytes,
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	if h.timeout <= 0 {
		h.timeout = defaultTimeout
	}
	if h.maxAudio <= 0 {
		h.maxAudio = 10 << 20
	}
	if h.hub == nil {
		h.hub = session.NewHub(h.log)
	}
	if h.sessions == nil {
		h.sessions = session.NewObserved(session.NewMemory(24*time.Hour), h.hub)
	}
	return h
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

var errBadJSON = errors.New("bad json")

func decodeJSON(r *http.Request, v any) error {
	return decodeJSONLimit(nil, r, v, maxBodyBytes)
}

// decodeJSONLimit decodes at most limit bytes of body. A larger body fails
// with an error wrapping *http.MaxBytesError.
func decodeJSONLimit(w http.ResponseWriter, r *http.Request, v any, limit int64) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	if err := dec.Decode(v); err != nil {
		return errors.Join(errBadJSON, err)
	}
	return nil
}

// tooLarge reports whether err came from a body over its limit.
func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// generationContext bounds one upstream call and tags it for history.
func (h *Handle) generationContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	return toolkit.WithSource(ctx, "http"), cancel
}
