package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const stagingKeyPrefix = "import:"

// RedisStagingStore keeps staged import sessions in Redis as JSON with a key TTL
type RedisStagingStore struct {
	client *redis.Client
}

// NewRedisStagingStore creates a new Redis backed staging store
func NewRedisStagingStore(client *redis.Client) *RedisStagingStore {
	return &RedisStagingStore{client: client}
}

func stagingKey(importID string) string {
	return stagingKeyPrefix + importID
}

// Put stores a session until ttl elapses
func (s *RedisStagingStore) Put(ctx context.Context, session *ImportSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal import session %s: %w", session.ID, err)
	}

	if err := s.client.Set(ctx, stagingKey(session.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to stage import session %s: %w", session.ID, err)
	}

	return nil
}

// Get loads a session, returning ErrImportNotFound once it has expired or been removed
func (s *RedisStagingStore) Get(ctx context.Context, importID string) (*ImportSession, error) {
	val, err := s.client.Get(ctx, stagingKey(importID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrImportNotFound
		}
		return nil, fmt.Errorf("failed to load import session %s: %w", importID, err)
	}

	var session ImportSession
	if err := json.Unmarshal(val, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal import session %s: %w", importID, err)
	}

	return &session, nil
}

// Delete removes a session. Removing a missing session reports ErrImportNotFound
// so two concurrent confirms cannot both proceed.
func (s *RedisStagingStore) Delete(ctx context.Context, importID string) error {
	n, err := s.client.Del(ctx, stagingKey(importID)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete import session %s: %w", importID, err)
	}
	if n == 0 {
		return ErrImportNotFound
	}
	return nil
}

type stagedEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStagingStore keeps staged sessions in process memory. Expired entries
// are dropped lazily on access and by Sweep.
type MemoryStagingStore struct {
	mu      sync.Mutex
	entries map[string]stagedEntry
	now     func() time.Time
}

// NewMemoryStagingStore creates a new in-memory staging store
func NewMemoryStagingStore() *MemoryStagingStore {
	return &MemoryStagingStore{
		entries: make(map[string]stagedEntry),
		now:     time.Now,
	}
}

// Put stores a copy of the session until ttl elapses
func (s *MemoryStagingStore) Put(ctx context.Context, session *ImportSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal import session %s: %w", session.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[session.ID] = stagedEntry{data: data, expiresAt: s.now().Add(ttl)}
	return nil
}

// Get returns a copy of the session or ErrImportNotFound
func (s *MemoryStagingStore) Get(ctx context.Context, importID string) (*ImportSession, error) {
	s.mu.Lock()
	entry, ok := s.entries[importID]
	if ok && !s.now().Before(entry.expiresAt) {
		delete(s.entries, importID)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return nil, ErrImportNotFound
	}

	var session ImportSession
	if err := json.Unmarshal(entry.data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal import session %s: %w", importID, err)
	}
	return &session, nil
}

// Delete removes a live session or reports ErrImportNotFound
func (s *MemoryStagingStore) Delete(ctx context.Context, importID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[importID]
	if !ok {
		return ErrImportNotFound
	}
	delete(s.entries, importID)
	if !s.now().Before(entry.expiresAt) {
		return ErrImportNotFound
	}
	return nil
}

// Sweep drops every expired session and returns how many were removed
func (s *MemoryStagingStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries held, expired or not
func (s *MemoryStagingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
