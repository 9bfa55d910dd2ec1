package memory

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSessionNotFound is returned when a token is unknown or expired.
var ErrSessionNotFound = errors.New("session: not found")

// Session is the payload stored per bearer token.
type Session struct {
	UserID   string
	Role     string
	ExpireAt time.Time
}

// SessionStore is an in-memory bearer-token session store used when
// Redis is disabled. Expired entries are dropped lazily on read.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
}

// NewSessionStore creates an empty in-memory session store. A
// non-positive ttl means sessions never expire.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]Session),
		ttl:      ttl,
	}
}

// Put stores a session under the given token.
func (s *SessionStore) Put(ctx context.Context, token, userID, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := Session{UserID: userID, Role: role}
	if s.ttl > 0 {
		sess.ExpireAt = time.Now().Add(s.ttl)
	}
	s.sessions[token] = sess
	return nil
}

// Get resolves a token to its session.
func (s *SessionStore) Get(ctx context.Context, token string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	if !sess.ExpireAt.IsZero() && time.Now().After(sess.ExpireAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	return &sess, nil
}

// Delete revokes a session token.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
