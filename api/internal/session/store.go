// Package session keeps award state for clients between toggle and finalize
// calls and fans state changes out to subscribers.
package session

import (
	"context"
	"errors"
	"time"

	"esl-toolkit/api/internal/gamify"
)

var ErrNotFound = errors.New("award session not found")

// Store holds one gamify.Awards per session id. Implementations serialize
// mutations of a single session.
type Store interface {
	Create(ctx context.Context, ext gamify.Extraction) (string, gamify.AwardState, error)
	Get(ctx context.Context, id string) (gamify.AwardState, error)
	// Toggle reports whether the state changed.
	Toggle(ctx context.Context, id, category string) (gamify.AwardState, bool, error)
	Finalize(ctx context.Context, id string) (gamify.AwardState, error)
	Delete(ctx context.Context, id string) error
}

const (
	EventToggled       = "toggled"
	EventFinalized     = "finalized"
	EventBadgeUnlocked = "badge_unlocked"
)

type Event struct {
	Type      string            `json:"type"`
	SessionID string            `json:"sessionId"`
	Category  string            `json:"category,omitempty"`
	BadgeName string            `json:"badgeName,omitempty"`
	State     gamify.AwardState `json:"state"`
	Timestamp time.Time         `json:"timestamp"`
}

type Publisher interface {
	Publish(e Event)
}

// Observed wraps a Store and publishes an Event for every state change.
type Observed struct {
	Store
	pub Publisher
}

func NewObserved(s Store, pub Publisher) *Observed {
	return &Observed{Store: s, pub: pub}
}

func (o *Observed) Toggle(ctx context.Context, id, category string) (gamify.AwardState, bool, error) {
	st, changed, err := o.Store.Toggle(ctx, id, category)
	if err == nil && changed {
		o.pub.Publish(Event{Type: EventToggled, SessionID: id, Category: category, State: st, Timestamp: time.Now()})
	}
	return st, changed, err
}

func (o *Observed) Finalize(ctx context.Context, id string) (gamify.AwardState, error) {
	before, err := o.Store.Get(ctx, id)
	if err != nil {
		return gamify.AwardState{}, err
	}
	st, err := o.Store.Finalize(ctx, id)
	if err != nil || before.Finalized {
		return st, err
	}
	now := time.Now()
	o.pub.Publish(Event{Type: EventFinalized, SessionID: id, State: st, Timestamp: now})
	if st.BadgeUnlocked && st.Badge != nil {
		o.pub.Publish(Event{Type: EventBadgeUnlocked, SessionID: id, BadgeName: st.Badge.Name, State: st, Timestamp: now})
	}
	return st, nil
}
