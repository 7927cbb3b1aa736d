package session

import (
	"sync"

	"shopmate/internal/model"
)

// Session holds one conversation's state and chronological turn history.
// The id is externally supplied and never changes; the session object
// itself lives for the life of the process.
type Session struct {
	ID string

	turnMu sync.Mutex // serializes whole turns for this session

	mu      sync.Mutex
	state   model.ConversationState
	history []model.Turn
}

// LockTurn blocks until this session's current turn (if any) finishes.
// Turns for different sessions proceed independently.
func (s *Session) LockTurn() {
	s.turnMu.Lock()
}

// UnlockTurn releases the turn lock.
func (s *Session) UnlockTurn() {
	s.turnMu.Unlock()
}

// State returns the current conversation state.
func (s *Session) State() model.ConversationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetState records the conversation state decided for the latest turn.
func (s *Session) SetState(state model.ConversationState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// Append adds a turn to the history, preserving insertion order.
func (s *Session) Append(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, model.Turn{Role: role, Content: content})
}

// History returns a copy of the turn history in chronological order.
func (s *Session) History() []model.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Turn, len(s.history))
	copy(out, s.history)
	return out
}

// Clear empties the history without changing the id or state.
// The session entry itself is never deleted.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

// Store owns the lifecycle of per-conversation sessions, keyed by an
// opaque session identifier. Entries are created lazily and never evicted.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// GetOrCreate returns the session for id, creating it on first reference.
// Safe for concurrent calls across different ids.
func (st *Store) GetOrCreate(id string) *Session {
	st.mu.RLock()
	sess, ok := st.sessions[id]
	st.mu.RUnlock()
	if ok {
		return sess
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if sess, ok := st.sessions[id]; ok {
		return sess
	}
	sess = &Session{ID: id, state: model.StateInitial}
	st.sessions[id] = sess
	return sess
}

// Clear resets the history of the session with the given id, if it exists.
func (st *Store) Clear(id string) {
	st.mu.RLock()
	sess, ok := st.sessions[id]
	st.mu.RUnlock()
	if ok {
		sess.Clear()
	}
}

// Len returns the number of sessions seen so far.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
