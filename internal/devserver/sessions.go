package devserver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionStore maps opaque session tokens to user ids.
type SessionStore interface {
	Create(ctx context.Context, userID int64) (string, error)
	Lookup(ctx context.Context, token string) (int64, bool, error)
	Delete(ctx context.Context, token string) error
}

type memEntry struct {
	userID  int64
	expires time.Time
}

// MemorySessions keeps sessions in process memory.
type MemorySessions struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]memEntry
}

// NewMemorySessions creates an in-memory store with sliding expiry ttl.
func NewMemorySessions(ttl time.Duration) *MemorySessions {
	return &MemorySessions{ttl: ttl, now: time.Now, sessions: make(map[string]memEntry)}
}

func (m *MemorySessions) Create(_ context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	m.mu.Lock()
	m.sessions[token] = memEntry{userID: userID, expires: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return token, nil
}

func (m *MemorySessions) Lookup(_ context.Context, token string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[token]
	if !ok {
		return 0, false, nil
	}
	now := m.now()
	if now.After(e.expires) {
		delete(m.sessions, token)
		return 0, false, nil
	}
	e.expires = now.Add(m.ttl)
	m.sessions[token] = e
	return e.userID, true, nil
}

func (m *MemorySessions) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
	return nil
}

// RedisSessions stores sessions in Redis so several server instances can
// share them.
type RedisSessions struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessions creates a Redis-backed store with sliding expiry ttl.
func NewRedisSessions(client *redis.Client, ttl time.Duration) *RedisSessions {
	return &RedisSessions{client: client, ttl: ttl}
}

func (r *RedisSessions) key(token string) string {
	return fmt.Sprintf("taskdeck:session:%s", token)
}

func (r *RedisSessions) Create(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	if err := r.client.Set(ctx, r.key(token), strconv.FormatInt(userID, 10), r.ttl).Err(); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}
	return token, nil
}

func (r *RedisSessions) Lookup(ctx context.Context, token string) (int64, bool, error) {
	id, err := r.client.Get(ctx, r.key(token)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("loading session: %w", err)
	}
	if err := r.client.Expire(ctx, r.key(token), r.ttl).Err(); err != nil {
		return 0, false, fmt.Errorf("extending session: %w", err)
	}
	return id, true, nil
}

func (r *RedisSessions) Delete(ctx context.Context, token string) error {
	return r.client.Del(ctx, r.key(token)).Err()
}
