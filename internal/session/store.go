package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"reportmerge/internal/mapping"
)

// Store keeps sessions in memory by id.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	now      func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{sessions: map[uuid.UUID]*Session{}, now: time.Now}
}

// Create adds a new session using profile.
func (st *Store) Create(profile *mapping.Config) *Session {
	s := newSession(profile, st.now)
	st.mu.Lock()
	st.sessions[s.id] = s
	st.mu.Unlock()
	return s
}

// Get looks a session up by its string id.
func (st *Store) Get(id string) (*Session, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	st.mu.RLock()
	s, ok := st.sessions[uid]
	st.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, uid)
	}
	return s, nil
}

// Delete removes a session. Unknown ids are ignored.
func (st *Store) Delete(id uuid.UUID) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Prune drops sessions unused for longer than ttl and returns how many were
// removed.
func (st *Store) Prune(ttl time.Duration) int {
	cutoff := st.now().Add(-ttl)
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, s := range st.sessions {
		if s.lastUsed().Before(cutoff) {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}
