package telegram

import (
	"sync"

	"esl-toolkit/api/internal/gamify"
	"esl-toolkit/api/internal/llm"
	"esl-toolkit/api/internal/toolkit"
)

// chatState is the form and award state of one chat. seq grows on every view
// switch or cancel so a late generation can tell it is stale.
type chatState struct {
	mu sync.Mutex

	kind   toolkit.Kind
	values map[string]string
	field  int
	audio  *llm.Clip
	// lastExercise feeds the pronunciation sub-flow started from a speaking result.
	lastExercise string
	lastLevel    string

	seq     uint64
	loading bool

	awards   *gamify.Awards
	awardKey string
	// awardSeq tags the buttons of the current rubric message.
	awardSeq uint64
}

func (r *Router) state(chatID int64) *chatState {
	v, _ := r.states.LoadOrStore(chatID, &chatState{})
	return v.(*chatState)
}

// beginLocked switches the chat to kind and discards anything in flight.
func (st *chatState) beginLocked(kind toolkit.Kind) {
	st.seq++
	st.loading = false
	st.kind = kind
	st.values = map[string]string{}
	st.field = 0
	st.audio = nil
}

func (st *chatState) resetLocked() {
	st.beginLocked("")
}
