package followup

import (
	"context"
	"sync"
	"time"
)

// memoryState is the default StateStore: application-lifetime maps keyed by
// lead id, synchronized per key so runs for different leads never block
// each other.
type memoryState struct {
	mu      sync.Mutex
	entries map[int64]*leadState
}

type leadState struct {
	mu      sync.Mutex
	context string
	hasCtx  bool
	lastRun time.Time
	prevRun time.Time
}

func NewMemoryState() StateStore {
	return &memoryState{entries: make(map[int64]*leadState)}
}

func (s *memoryState) entry(leadID int64) *leadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[leadID]
	if !ok {
		e = &leadState{}
		s.entries[leadID] = e
	}
	return e
}

func (s *memoryState) IngestContext(_ context.Context, leadID int64, text string) error {
	e := s.entry(leadID)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.context = text
	e.hasCtx = true
	return nil
}

func (s *memoryState) Context(_ context.Context, leadID int64) (string, bool, error) {
	e := s.entry(leadID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.context, e.hasCtx, nil
}

func (s *memoryState) BeginRun(_ context.Context, leadID int64, minInterval time.Duration) (bool, error) {
	e := s.entry(leadID)
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	if !e.lastRun.IsZero() && now.Sub(e.lastRun) < minInterval {
		return false, nil
	}
	// reserve the slot; FailRun restores prevRun if the run errors
	e.prevRun = e.lastRun
	e.lastRun = now
	return true, nil
}

func (s *memoryState) FailRun(_ context.Context, leadID int64) error {
	e := s.entry(leadID)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastRun = e.prevRun
	return nil
}
