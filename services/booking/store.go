package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	draftPrefix = "draft:"
	lockPrefix  = "draft-lock:"
)

// DraftStore persists drafts between requests.
type DraftStore interface {
	Save(ctx context.Context, d *Draft) error
	Get(ctx context.Context, id string) (*Draft, error)
	Delete(ctx context.Context, id string) error
	// Lock takes a short exclusive hold on a draft; false means someone else holds it.
	Lock(ctx context.Context, id string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, id string) error
}

// RedisDraftStore keeps drafts as JSON with a sliding TTL.
type RedisDraftStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisDraftStore(client *redis.Client, ttl time.Duration) *RedisDraftStore {
	return &RedisDraftStore{Client: client, TTL: ttl}
}

func (s *RedisDraftStore) Save(ctx context.Context, d *Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal booking draft: %w", err)
	}
	if err := s.Client.Set(ctx, draftPrefix+d.ID, data, s.TTL).Err(); err != nil {
		return fmt.Errorf("failed to cache booking draft: %w", err)
	}
	return nil
}

func (s *RedisDraftStore) Get(ctx context.Context, id string) (*Draft, error) {
	data, err := s.Client.Get(ctx, draftPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking draft: %w", err)
	}
	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse booking draft: %w", err)
	}
	return &d, nil
}

func (s *RedisDraftStore) Delete(ctx context.Context, id string) error {
	return s.Client.Del(ctx, draftPrefix+id).Err()
}

func (s *RedisDraftStore) Lock(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	ok, err := s.Client.SetNX(ctx, lockPrefix+id, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to lock booking draft: %w", err)
	}
	return ok, nil
}

func (s *RedisDraftStore) Unlock(ctx context.Context, id string) error {
	return s.Client.Del(ctx, lockPrefix+id).Err()
}

// MemoryDraftStore is an in-process DraftStore for tests and local runs without Redis.
type MemoryDraftStore struct {
	mu     sync.Mutex
	drafts map[string][]byte
	locks  map[string]time.Time
}

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{drafts: map[string][]byte{}, locks: map[string]time.Time{}}
}

func (s *MemoryDraftStore) Save(_ context.Context, d *Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal booking draft: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[d.ID] = data
	return nil
}

func (s *MemoryDraftStore) Get(_ context.Context, id string) (*Draft, error) {
	s.mu.Lock()
	data, ok := s.drafts[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrDraftNotFound
	}
	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse booking draft: %w", err)
	}
	return &d, nil
}

func (s *MemoryDraftStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
	return nil
}

func (s *MemoryDraftStore) Lock(_ context.Context, id string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if until, held := s.locks[id]; held && time.Now().Before(until) {
		return false, nil
	}
	s.locks[id] = time.Now().Add(ttl)
	return true, nil
}

func (s *MemoryDraftStore) Unlock(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, id)
	return nil
}
