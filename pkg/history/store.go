package history

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// MaxHistoryLength is the retention cap: the maximum number of turns
// kept per session. Older turns are discarded once the cap is exceeded.
const MaxHistoryLength = 10

// Turn is one question/answer exchange within a session. Turns are
// immutable once stored.
type Turn struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
}

// Store maps session identifiers to their ordered turn history. It is
// safe for concurrent use: the sessions map is guarded by mu, and
// appends to the same session are additionally serialized through a
// per-session write lock so the cap check never observes a stale
// length.
type Store struct {
	mu         sync.RWMutex
	sessions   map[string][]Turn
	writeLocks map[string]*sync.Mutex
	locksMu    sync.Mutex
	maxLen     int
}

// NewStore creates an empty store with the default retention cap.
func NewStore() *Store {
	return &Store{
		sessions:   make(map[string][]Turn),
		writeLocks: make(map[string]*sync.Mutex),
		maxLen:     MaxHistoryLength,
	}
}

// getWriteLock gets or creates the write lock for a session.
func (s *Store) getWriteLock(sessionID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	if lock, exists := s.writeLocks[sessionID]; exists {
		return lock
	}

	lock := &sync.Mutex{}
	s.writeLocks[sessionID] = lock
	return lock
}

// GetOrCreate returns a snapshot of the session's turns, creating an
// empty session if the identifier has not been seen before. It accepts
// any string identifier, including the default sentinel used when a
// caller supplies none.
func (s *Store) GetOrCreate(sessionID string) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns, exists := s.sessions[sessionID]
	if !exists {
		s.sessions[sessionID] = []Turn{}
		log.Debug().Str("sessionId", sessionID).Msg("Session created")
		return []Turn{}
	}

	return snapshot(turns)
}

// Append adds a turn to the session and enforces the retention cap,
// keeping only the most recent turns counted from the end of the list.
// The cap check runs after every append. It returns a snapshot of the
// stored history and the number of turns discarded.
func (s *Store) Append(sessionID string, turn Turn) ([]Turn, int) {
	lock := s.getWriteLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	turns := append(s.sessions[sessionID], turn)
	trimmed := 0
	if len(turns) > s.maxLen {
		trimmed = len(turns) - s.maxLen
		turns = turns[trimmed:]
	}
	s.sessions[sessionID] = turns
	result := snapshot(turns)
	s.mu.Unlock()

	if trimmed > 0 {
		log.Debug().
			Str("sessionId", sessionID).
			Int("trimmed", trimmed).
			Msg("History trimmed to retention cap")
	}

	return result, trimmed
}

// HistoryOf returns a snapshot of the stored turns for a session, or an
// empty slice if the session has never been created. It is a pure read
// and never creates an entry.
func (s *Store) HistoryOf(sessionID string) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns, exists := s.sessions[sessionID]
	if !exists {
		return []Turn{}
	}

	return snapshot(turns)
}

// Has reports whether the session has been created.
func (s *Store) Has(sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.sessions[sessionID]
	return exists
}

// ListSessions returns all known session identifiers. Order is
// unspecified.
func (s *Store) ListSessions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		sessions = append(sessions, id)
	}

	return sessions
}

// Count returns the number of known sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

// ClearAll removes every session, resetting the store to an empty
// mapping so subsequent lookups behave as if freshly initialized. It
// returns the number of sessions removed.
func (s *Store) ClearAll() int {
	s.mu.Lock()
	cleared := len(s.sessions)
	s.sessions = make(map[string][]Turn)
	s.mu.Unlock()

	s.locksMu.Lock()
	s.writeLocks = make(map[string]*sync.Mutex)
	s.locksMu.Unlock()

	log.Info().Int("sessions", cleared).Msg("All session history cleared")

	return cleared
}

func snapshot(turns []Turn) []Turn {
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}
