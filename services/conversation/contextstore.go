package conversation

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"yawlit/models"
)

const contextKeyPrefix = "conv:ctx:"

// Snapshot is the serialized form of a conversation: the context record plus
// the scratchpad entries. It is what survives process restarts.
type Snapshot struct {
	Context models.ConversationContext                 `json:"context"`
	Fields  map[models.FieldName]models.ScratchpadField `json:"fields"`
}

// ContextStore persists conversation snapshots between turns. Get returns
// (nil, nil) for an unknown conversation id.
type ContextStore interface {
	Get(ctx context.Context, id string) (*Snapshot, error)
	Set(ctx context.Context, id string, snap *Snapshot) error
	Clear(ctx context.Context, id string) error
}

// RedisContextStore keeps snapshots as JSON under conv:ctx:<id> with a
// sliding TTL, so idle conversations expire on their own.
type RedisContextStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisContextStore(client *redis.Client, ttl time.Duration) *RedisContextStore {
	return &RedisContextStore{client: client, ttl: ttl}
}

func (s *RedisContextStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	data, err := s.client.Get(ctx, contextKeyPrefix+id).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *RedisContextStore) Set(ctx context.Context, id string, snap *Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, contextKeyPrefix+id, b, s.ttl).Err()
}

func (s *RedisContextStore) Clear(ctx context.Context, id string) error {
	return s.client.Del(ctx, contextKeyPrefix+id).Err()
}

// MemoryContextStore is a map-backed store for tests and single-process runs.
type MemoryContextStore struct {
	mu    sync.RWMutex
	snaps map[string][]byte
}

func NewMemoryContextStore() *MemoryContextStore {
	return &MemoryContextStore{snaps: make(map[string][]byte)}
}

func (s *MemoryContextStore) Get(_ context.Context, id string) (*Snapshot, error) {
	s.mu.RLock()
	data, ok := s.snaps[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *MemoryContextStore) Set(_ context.Context, id string, snap *Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.snaps[id] = b
	s.mu.Unlock()
	return nil
}

func (s *MemoryContextStore) Clear(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.snaps, id)
	s.mu.Unlock()
	return nil
}
