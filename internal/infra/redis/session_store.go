package redis

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"examifyr-gateway/internal/app"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Sessions hold live answer state, so they stay in a local map; Redis only
// carries a liveness marker per session that operators can count across
// instances (SCAN play:session:*). Every lookup (answer, reset, submit)
// pushes the marker's expiry out by ttl, so a marker lapses only after ttl
// of inactivity.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Save(session *app.Session) {
	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()

	s.touch(session)
}

// touch writes the best-effort liveness marker with a fresh ttl.
func (s *SessionStore) touch(session *app.Session) {
	if err := s.client.Set(context.Background(), s.key(session.ID()), session.Quiz().QuizID, s.ttl).Err(); err != nil {
		slog.Warn("session marker write failed", "sessionId", session.ID(), "error", err)
	}
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		s.touch(session)
	}
	return session, ok
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	if !ok {
		return
	}
	_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
}

func (s *SessionStore) key(sessionID string) string {
	return "play:session:" + sessionID
}
