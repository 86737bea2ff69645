package shared

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore persists encoded session payloads keyed by session id.
// Load returns ErrSessionNotFound for unknown or expired ids.
type SessionStore interface {
	Load(ctx context.Context, id string) ([]byte, error)
	Save(ctx context.Context, id string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// RedisSessionStore keeps sessions in Redis and lets key TTLs expire them.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore wraps a Redis client.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

// Load fetches the payload stored under id.
func (s *RedisSessionStore) Load(ctx context.Context, id string) ([]byte, error) {
	data, err := s.client.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return data, nil
}

// Save writes the payload with the given expiry.
func (s *RedisSessionStore) Save(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	return s.client.Set(ctx, redisKey(id), data, ttl).Err()
}

// Delete removes the payload; missing keys are ignored.
func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKey(id)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

func redisKey(id string) string {
	return "session:" + id
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemorySessionStore is a process-local SessionStore.
type MemorySessionStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemorySessionStore constructs an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// WithClock replaces the time source, used by tests to simulate expiry.
func (s *MemorySessionStore) WithClock(now func() time.Time) *MemorySessionStore {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
	return s
}

// Load returns a copy of the payload if it has not expired.
func (s *MemorySessionStore) Load(ctx context.Context, id string) ([]byte, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	now := s.now()
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !entry.expiresAt.After(now) {
		s.mu.Lock()
		delete(s.entries, id)
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	out := make([]byte, len(entry.data))
	copy(out, entry.data)
	return out, nil
}

// Save stores a copy of data until now+ttl.
func (s *MemorySessionStore) Save(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	s.mu.Lock()
	s.entries[id] = memoryEntry{data: buf, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

// Delete drops the entry; unknown ids are ignored.
func (s *MemorySessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

// Sweep removes expired entries and reports how many were dropped.
func (s *MemorySessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, entry := range s.entries {
		if !entry.expiresAt.After(now) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored entries, expired or not.
func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

var (
	_ SessionStore = (*RedisSessionStore)(nil)
	_ SessionStore = (*MemorySessionStore)(nil)
)
