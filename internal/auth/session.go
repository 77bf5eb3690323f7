package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// SessionTTL is a 7-day sliding window: every successful resolve
	// pushes the expiry out again.
	SessionTTL    = 7 * 24 * time.Hour
	SessionCookie = "session_id"
)

// SessionStore wraps Redis for session management. A session is an
// opaque handle mapping to the id of the user who logged in with it.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

// Create stores a new session mapping sessionID -> userID.
func (s *SessionStore) Create(ctx context.Context, userID string) (string, error) {
	sid := uuid.New().String()
	err := s.rdb.Set(ctx, "session:"+sid, userID, SessionTTL).Err()
	return sid, err
}

// Get returns the userID for a session, or "" if missing, expired or
// malformed. A hit refreshes the TTL (sliding window).
func (s *SessionStore) Get(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", nil
	}
	val, err := s.rdb.Get(ctx, "session:"+sessionID).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	s.rdb.Expire(ctx, "session:"+sessionID, SessionTTL)
	return val, nil
}

// Delete removes a session. Deleting an unknown handle is a no-op.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, "session:"+sessionID).Err()
}
