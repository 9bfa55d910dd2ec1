package redis

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned when a session token is unknown or expired.
var ErrSessionNotFound = errors.New("session: not found")

// Session is the payload stored per bearer token.
type Session struct {
	UserID   string    `json:"user_id"`
	Role     string    `json:"role"`
	IssuedAt time.Time `json:"issued_at"`
}

// SessionStore implements bearer-token session storage using the generic
// Redis Cache. Expiry rides on the Redis TTL: an expired token simply
// stops resolving, no sweeper needed.
type SessionStore struct {
	cache *Cache
	ttl   time.Duration
}

// NewSessionStore creates a new SessionStore. A non-positive ttl falls
// back to TTLSessionData.
func NewSessionStore(cache *Cache, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = TTLSessionData
	}
	return &SessionStore{cache: cache, ttl: ttl}
}

// Put stores a session under the given token.
func (s *SessionStore) Put(ctx context.Context, token, userID, role string) error {
	if token == "" {
		return ErrCacheKeyEmpty
	}
	sess := Session{UserID: userID, Role: role, IssuedAt: time.Now().UTC()}
	return s.cache.Set(ctx, SessionKey(token), sess, s.ttl)
}

// Get resolves a token to its session.
func (s *SessionStore) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	var sess Session
	err := s.cache.Get(ctx, SessionKey(token), &sess)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &sess, nil
}

// Touch extends the session TTL on activity.
func (s *SessionStore) Touch(ctx context.Context, token string) error {
	if token == "" {
		return ErrSessionNotFound
	}
	return s.cache.Expire(ctx, SessionKey(token), s.ttl)
}

// Delete revokes a session token.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.cache.Delete(ctx, SessionKey(token))
}
