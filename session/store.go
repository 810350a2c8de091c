// Package session stores login sessions in Redis
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrNoSession reports a missing or expired session id.
var ErrNoSession = errors.New("no such session")

// Session is the server-side record a session cookie points at.
type Session struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}

// Store keeps sessions in Redis under opaque ids, expiring after ttl.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore is constructor
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func key(id string) string {
	return "session:" + id
}

// Create stores a new session and returns its opaque id.
func (s *Store) Create(ctx context.Context, userID uint, username string) (string, error) {
	id := uuid.NewString()
	payload, err := json.Marshal(Session{UserID: userID, Username: username})
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, key(id), payload, s.ttl).Err(); err != nil {
		return "", err
	}
	return id, nil
}

// Get resolves a session id and slides its expiry forward.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	payload, err := s.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, err
	}
	s.rdb.Expire(ctx, key(id), s.ttl)
	return &sess, nil
}

// Destroy removes a session. Destroying an unknown id is not an error.
func (s *Store) Destroy(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, key(id)).Err()
}
