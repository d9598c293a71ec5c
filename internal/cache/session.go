package cache

import (
	"sync"
	"time"
)

// DefaultSessionLogMax bounds a session's query log to its most recent N
// entries.
const DefaultSessionLogMax = 50

// DefaultSessionTTL is how long an untouched session is retained.
const DefaultSessionTTL = 24 * time.Hour

// QueryLogEntry is one observational record in a session's query log.
// Sessions never feed conversational context back into a prompt; this log
// is write-only from the orchestrator's perspective.
type QueryLogEntry struct {
	Timestamp    time.Time
	Question     string
	AnswerLength int
	DocCount     int
}

type session struct {
	entries []QueryLogEntry
	touched time.Time
}

// SessionStore holds bounded, idle-expiring per-session query logs.
type SessionStore struct {
	mu            sync.Mutex
	sessions      map[string]*session
	maxLogEntries int
	idleTTL       time.Duration
}

// NewSessionStore builds a SessionStore. Zero maxLogEntries/idleTTL fall
// back to DefaultSessionLogMax/DefaultSessionTTL.
func NewSessionStore(maxLogEntries int, idleTTL time.Duration) *SessionStore {
	if maxLogEntries <= 0 {
		maxLogEntries = DefaultSessionLogMax
	}
	if idleTTL <= 0 {
		idleTTL = DefaultSessionTTL
	}
	return &SessionStore{
		sessions:      make(map[string]*session),
		maxLogEntries: maxLogEntries,
		idleTTL:       idleTTL,
	}
}

// Record appends an entry to sessionID's log, creating the session if
// needed and resetting its idle timer. A no-op for an empty sessionID.
func (s *SessionStore) Record(sessionID string, now time.Time, question, answer string, docCount int) {
	if sessionID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictIdleLocked(now)

	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{}
		s.sessions[sessionID] = sess
	}

	sess.touched = now
	sess.entries = append(sess.entries, QueryLogEntry{
		Timestamp:    now,
		Question:     question,
		AnswerLength: len(answer),
		DocCount:     docCount,
	})
	if len(sess.entries) > s.maxLogEntries {
		sess.entries = sess.entries[len(sess.entries)-s.maxLogEntries:]
	}
}

// Log returns a copy of sessionID's query log, or nil if the session does
// not exist or has expired.
func (s *SessionStore) Log(sessionID string, now time.Time) []QueryLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictIdleLocked(now)

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	return append([]QueryLogEntry(nil), sess.entries...)
}

func (s *SessionStore) evictIdleLocked(now time.Time) {
	for id, sess := range s.sessions {
		if now.Sub(sess.touched) > s.idleTTL {
			delete(s.sessions, id)
		}
	}
}
