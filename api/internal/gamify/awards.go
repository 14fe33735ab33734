package gamify

// Awards tracks the criteria a teacher has granted for one exercise.
// It starts Collecting and becomes Finalized once; nothing changes after that.
// Awards is not safe for concurrent use; its owner serializes access.
type Awards struct {
	ext       Extraction
	awarded   map[string]bool
	finalized bool
}

// AwardState is the serializable snapshot of Awards plus its derived values.
type AwardState struct {
	Extraction
	Awarded       []string `json:"awarded"`
	Finalized     bool     `json:"finalized"`
	TotalAwarded  int      `json:"totalAwarded"`
	BadgeUnlocked bool     `json:"badgeUnlocked"`
}

func NewAwards(ext Extraction) *Awards {
	return &Awards{ext: ext, awarded: map[string]bool{}}
}

// Restore rebuilds Awards from a stored snapshot. Awarded categories that are
// not part of the rubric are ignored.
func Restore(st AwardState) *Awards {
	a := NewAwards(st.Extraction)
	for _, c := range st.Awarded {
		if a.known(c) {
			a.awarded[c] = true
		}
	}
	a.finalized = st.Finalized
	return a
}

func (a *Awards) Extraction() Extraction { return a.ext }
func (a *Awards) Finalized() bool        { return a.finalized }

func (a *Awards) Awarded(category string) bool { return a.awarded[category] }

// Toggle flips category in the awarded set. It reports false and changes
// nothing once finalized or when category is not in the rubric.
func (a *Awards) Toggle(category string) bool {
	if a.finalized || !a.known(category) {
		return false
	}
	if a.awarded[category] {
		delete(a.awarded, category)
	} else {
		a.awarded[category] = true
	}
	return true
}

// Finalize locks the awards. Calling it again has no effect.
func (a *Awards) Finalize() { a.finalized = true }

func (a *Awards) TotalAwarded() int {
	total := 0
	for _, c := range a.ext.Criteria {
		if a.awarded[c.Category] {
			total += c.Points
		}
	}
	return total
}

// BadgeUnlocked is true only after finalize when at least 80% of the possible
// points were awarded.
func (a *Awards) BadgeUnlocked() bool {
	total := a.ext.TotalPossiblePoints
	if !a.finalized || total <= 0 {
		return false
	}
	return 5*a.TotalAwarded() >= 4*total
}

func (a *Awards) State() AwardState {
	awarded := make([]string, 0, len(a.awarded))
	for _, c := range a.ext.Criteria {
		if a.awarded[c.Category] {
			awarded = append(awarded, c.Category)
		}
	}
	return AwardState{
		Extraction:    a.ext,
		Awarded:       awarded,
		Finalized:     a.finalized,
		TotalAwarded:  a.TotalAwarded(),
		BadgeUnlocked: a.BadgeUnlocked(),
	}
}

func (a *Awards) known(category string) bool {
	for _, c := range a.ext.Criteria {
		if c.Category == category {
			return true
		}
	}
	return false
}
