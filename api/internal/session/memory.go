package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"esl-toolkit/api/internal/gamify"
)

type memEntry struct {
	awards  *gamify.Awards
	expires time.Time
}

// Memory is an in-process Store. Expired sessions are dropped lazily.
type Memory struct {
	mu  sync.Mutex
	m   map[string]*memEntry
	ttl time.Duration
	now func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{m: map[string]*memEntry{}, ttl: ttl, now: time.Now}
}

func (s *Memory) Create(_ context.Context, ext gamify.Extraction) (string, gamify.AwardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()

	id := uuid.NewString()
	a := gamify.NewAwards(ext)
	s.m[id] = &memEntry{awards: a, expires: s.now().Add(s.ttl)}
	return id, a.State(), nil
}

func (s *Memory) Get(_ context.Context, id string) (gamify.AwardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.getLocked(id)
	if err != nil {
		return gamify.AwardState{}, err
	}
	return e.awards.State(), nil
}

func (s *Memory) Toggle(_ context.Context, id, category string) (gamify.AwardState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.getLocked(id)
	if err != nil {
		return gamify.AwardState{}, false, err
	}
	changed := e.awards.Toggle(category)
	return e.awards.State(), changed, nil
}

func (s *Memory) Finalize(_ context.Context, id string) (gamify.AwardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.getLocked(id)
	if err != nil {
		return gamify.AwardState{}, err
	}
	e.awards.Finalize()
	return e.awards.State(), nil
}

func (s *Memory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[id]; !ok {
		return ErrNotFound
	}
	delete(s.m, id)
	return nil
}

func (s *Memory) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	return len(s.m)
}

func (s *Memory) getLocked(id string) (*memEntry, error) {
	e, ok := s.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.ttl > 0 && s.now().After(e.expires) {
		delete(s.m, id)
		return nil, ErrNotFound
	}
	return e, nil
}

func (s *Memory) sweepLocked() {
	if s.ttl <= 0 {
		return
	}
	now := s.now()
	for id, e := range s.m {
		if now.After(e.expires) {
			delete(s.m, id)
		}
	}
}
