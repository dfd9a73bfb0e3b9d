package services

import (
	"sync"
	"time"

	"coinflip-ladder-backend/internal/models"
)

// LadderStore keeps active ladder sessions in process memory. Each session is
// removed by its own timer once the TTL elapses; lookups also treat a session
// past its TTL as gone so a late timer never exposes a stale record.
type LadderStore struct {
	mu       sync.Mutex
	sessions map[string]*ladderEntry
	ttl      time.Duration
	onExpire func(models.LadderSession)
}

type ladderEntry struct {
	session models.LadderSession
	timer   *time.Timer
}

func NewLadderStore(ttl time.Duration) *LadderStore {
	if ttl <= 0 {
		ttl = models.SessionTTL
	}
	return &LadderStore{
		sessions: make(map[string]*ladderEntry),
		ttl:      ttl,
	}
}

// OnExpire registers a callback invoked after a session is removed by its timer.
func (s *LadderStore) OnExpire(fn func(models.LadderSession)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onExpire = fn
}

func (s *LadderStore) TTL() time.Duration {
	return s.ttl
}

func (s *LadderStore) Create(betAmount, multiplier float64) (models.LadderSession, error) {
	id, err := models.GenerateSessionID()
	if err != nil {
		return models.LadderSession{}, err
	}

	session := models.LadderSession{
		ID:                id,
		BetAmount:         betAmount,
		CurrentMultiplier: multiplier,
		MaxMultiplier:     models.MaxMultiplier,
		CreatedAt:         time.Now(),
	}

	entry := &ladderEntry{session: session}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = entry
	entry.timer = time.AfterFunc(s.ttl, func() {
		s.expire(id, entry)
	})

	return session, nil
}

func (s *LadderStore) Get(id string) (models.LadderSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.liveLocked(id)
	if !ok {
		return models.LadderSession{}, false
	}
	return entry.session, true
}

// Advance moves a session from one multiplier to the next only if it still
// holds the expected multiplier.
func (s *LadderStore) Advance(id string, from, to float64) (models.LadderSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.liveLocked(id)
	if !ok {
		return models.LadderSession{}, ErrInvalidSession
	}
	if entry.session.CurrentMultiplier != from {
		return models.LadderSession{}, ErrSessionConflict
	}
	if to < from {
		to = from
	}

	entry.session.CurrentMultiplier = to
	return entry.session, nil
}

// Remove deletes a session only if it still holds the expected multiplier.
func (s *LadderStore) Remove(id string, expected float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.liveLocked(id)
	if !ok {
		return ErrInvalidSession
	}
	if entry.session.CurrentMultiplier != expected {
		return ErrSessionConflict
	}

	s.deleteLocked(id, entry)
	return nil
}

// Take atomically returns and deletes a live session.
func (s *LadderStore) Take(id string) (models.LadderSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.liveLocked(id)
	if !ok {
		return models.LadderSession{}, false
	}

	s.deleteLocked(id, entry)
	return entry.session, true
}

func (s *LadderStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.sessions[id]; ok {
		s.deleteLocked(id, entry)
	}
}

func (s *LadderStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *LadderStore) liveLocked(id string) (*ladderEntry, bool) {
	entry, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if time.Since(entry.session.CreatedAt) >= s.ttl {
		s.deleteLocked(id, entry)
		return nil, false
	}
	return entry, true
}

func (s *LadderStore) deleteLocked(id string, entry *ladderEntry) {
	if entry.timer != nil {
		entry.timer.Stop()
	}
	delete(s.sessions, id)
}

func (s *LadderStore) expire(id string, entry *ladderEntry) {
	s.mu.Lock()
	current, ok := s.sessions[id]
	if !ok || current != entry {
		s.mu.Unlock()
		return
	}
	delete(s.sessions, id)
	onExpire := s.onExpire
	s.mu.Unlock()

	if onExpire != nil {
		onExpire(entry.session)
	}
}
