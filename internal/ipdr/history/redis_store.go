package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Nithin9585/ipdr-vsr/internal/ipdr/domain"
)

const (
	entryKeyPrefix = "ipdr:history:"      // entry JSON: ipdr:history:{id}
	indexKey       = "ipdr:history:index" // ZSET of ids scored by save time
	entryTTL       = 30 * 24 * time.Hour
)

// RedisStore keeps history entries in Redis, newest-first via a scored index.
type RedisStore struct {
	client *redis.Client
	limit  int
}

// NewRedisStore creates a Redis-backed history store bounded to limit entries.
func NewRedisStore(client *redis.Client, limit int) *RedisStore {
	if limit <= 0 {
		limit = 10
	}
	return &RedisStore{client: client, limit: limit}
}

func (s *RedisStore) Save(ctx context.Context, entry *domain.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.entryKey(entry.ID), data, entryTTL)
	pipe.ZAdd(ctx, indexKey, redis.Z{Score: float64(time.Now().UnixNano()), Member: entry.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save history entry: %w", err)
	}

	return s.Trim(ctx)
}

func (s *RedisStore) List(ctx context.Context) ([]domain.HistoryEntry, error) {
	ids, err := s.client.ZRevRange(ctx, indexKey, 0, int64(s.limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("list history index: %w", err)
	}

	entries := make([]domain.HistoryEntry, 0, len(ids))
	for _, id := range ids {
		data, err := s.client.Get(ctx, s.entryKey(id)).Result()
		if err == redis.Nil {
			// entry expired under the index; drop the dangling id
			s.client.ZRem(ctx, indexKey, id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get history entry %s: %w", id, err)
		}
		var entry domain.HistoryEntry
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			return nil, fmt.Errorf("unmarshal history entry %s: %w", id, err)
		}
		entry.Sessions = nil // metadata only
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*domain.HistoryEntry, error) {
	data, err := s.client.Get(ctx, s.entryKey(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get history entry: %w", err)
	}

	var entry domain.HistoryEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, fmt.Errorf("unmarshal history entry: %w", err)
	}
	return &entry, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	removed, err := s.client.ZRem(ctx, indexKey, id).Result()
	if err != nil {
		return fmt.Errorf("remove history index: %w", err)
	}
	if removed == 0 {
		return domain.ErrEntryNotFound
	}
	if err := s.client.Del(ctx, s.entryKey(id)).Err(); err != nil {
		return fmt.Errorf("delete history entry: %w", err)
	}
	return nil
}

func (s *RedisStore) Trim(ctx context.Context) error {
	stale, err := s.client.ZRevRange(ctx, indexKey, int64(s.limit), -1).Result()
	if err != nil {
		return fmt.Errorf("trim history index: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, id := range stale {
		pipe.Del(ctx, s.entryKey(id))
		pipe.ZRem(ctx, indexKey, id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("trim history entries: %w", err)
	}
	return nil
}

func (s *RedisStore) entryKey(id string) string {
	return entryKeyPrefix + id
}
