package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/domain"
)

// RedisDocumentStore keeps the JSON workflow document as a plain string
// value, one key per document.
type RedisDocumentStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisDocumentStore(client redis.UniversalClient, prefix string) *RedisDocumentStore {
	return &RedisDocumentStore{client: client, prefix: prefix}
}

func (r *RedisDocumentStore) redisKey(key string) string {
	return r.prefix + key
}

func (r *RedisDocumentStore) Save(ctx context.Context, key string, w domain.Workflow) error {
	payload, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal workflow: %w", err)
	}
	if err := r.client.Set(ctx, r.redisKey(key), payload, 0).Err(); err != nil {
		return fmt.Errorf("save document %s: %w", key, err)
	}
	return nil
}

func (r *RedisDocumentStore) Load(ctx context.Context, key string) (*domain.Workflow, error) {
	payload, err := r.client.Get(ctx, r.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", key, err)
	}
	return decodeDocument(key, payload)
}

func (r *RedisDocumentStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("delete document %s: %w", key, err)
	}
	return nil
}
