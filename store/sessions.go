package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is one user's independent roster plus the day they are looking at.
// Calls are serialized so each interaction runs to completion before the
// next one starts.
type Session struct {
	ID uuid.UUID

	mu        sync.Mutex
	store     *Store
	activeDay string
	lastSeen  time.Time
}

// Do runs fn with exclusive access to the session's store.
func (s *Session) Do(fn func(st *Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.store)
}

func (s *Session) ActiveDay() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeDay
}

// SessionState is a read-only view of a session.
type SessionState struct {
	ID        uuid.UUID
	ActiveDay string
	Days      []string
	Total     int
}

// State returns the session's active day and roster size.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionState{
		ID:        s.ID,
		ActiveDay: s.activeDay,
		Days:      s.store.Days(),
		Total:     s.store.Total(),
	}
}

// SelectDay sets the active day context.
func (s *Session) SelectDay(day string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.store.HasDay(day) {
		return fmt.Errorf("%w: %q", ErrUnknownDay, day)
	}
	s.activeDay = day
	return nil
}

// Sessions tracks live sessions. Every session loads its own roster from the
// shared persister; nothing coordinates their writes beyond the persister
// itself, so the last persist wins.
type Sessions struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session

	newStore func() *Store
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func NewSessions(newStore func() *Store, ttl time.Duration, logger *zap.Logger) *Sessions {
	return &Sessions{
		sessions: make(map[uuid.UUID]*Session),
		newStore: newStore,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

// Open starts a session by loading the persisted roster. A load failure
// leaves no session behind.
func (m *Sessions) Open(ctx context.Context) (*Session, error) {
	st := m.newStore()
	if _, err := st.Load(ctx); err != nil {
		return nil, err
	}

	sess := &Session{
		ID:       uuid.New(),
		store:    st,
		lastSeen: m.now(),
	}
	if days := st.Days(); len(days) > 0 {
		sess.activeDay = days[0]
	}

	m.mu.Lock()
	m.evictLocked()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	m.logger.Info("session opened", zap.String("session_id", sess.ID.String()))
	return sess, nil
}

// Get returns a live session and refreshes its idle timer.
func (m *Sessions) Get(id uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictLocked()
	sess, ok := m.sessions[id]
	if ok {
		sess.lastSeen = m.now()
	}
	return sess, ok
}

// Close discards a session. Its roster is not persisted again.
func (m *Sessions) Close(id uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len returns the number of live sessions, dropping expired ones first.
func (m *Sessions) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictLocked()
	return len(m.sessions)
}

func (m *Sessions) evictLocked() {
	if m.ttl <= 0 {
		return
	}
	now := m.now()
	for id, sess := range m.sessions {
		if now.Sub(sess.lastSeen) > m.ttl {
			delete(m.sessions, id)
			m.logger.Debug("session expired", zap.String("session_id", id.String()))
		}
	}
}
