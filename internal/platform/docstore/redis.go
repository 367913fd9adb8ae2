package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"safecommute/internal/common"
	"safecommute/internal/common/token"
	"safecommute/internal/platform/config"
)

// ConnectRedis dials the Redis instance from config and verifies the
// connection. The process cannot serve without its store, so failure is fatal.
func ConnectRedis() *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}
	fmt.Println("Successfully connected to Redis!")
	return rdb
}

// RedisStore keeps each document as a JSON string under "doc:<path>" and
// tracks collection membership in a set under "col:<parent>".
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, path string) (json.RawMessage, error) {
	val, err := s.rdb.Get(ctx, docKey(path)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoDocument
		}
		return nil, common.Errorf("RedisStore.Get %s: %w", path, err)
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, path string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return common.Errorf("RedisStore.Set %s: %w", path, err)
	}
	parent, child := splitPath(path)
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, docKey(path), raw, 0)
	if parent != "" {
		pipe.SAdd(ctx, colKey(parent), child)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return common.Errorf("RedisStore.Set %s: %w", path, err)
	}
	return nil
}

func (s *RedisStore) Update(ctx context.Context, path string, fields map[string]any) error {
	existing, err := s.Get(ctx, path)
	if err != nil && !errors.Is(err, ErrNoDocument) {
		return common.Errorf("RedisStore.Update %s: %w", path, err)
	}
	merged, err := mergeDocument(existing, fields)
	if err != nil {
		return common.Errorf("RedisStore.Update %s: %w", path, err)
	}
	return s.Set(ctx, path, json.RawMessage(merged))
}

func (s *RedisStore) Push(ctx context.Context, path string, value any) (string, error) {
	child := token.New()
	if err := s.Set(ctx, path+"/"+child, value); err != nil {
		return "", err
	}
	return child, nil
}

func (s *RedisStore) List(ctx context.Context, path string) (map[string]json.RawMessage, error) {
	children, err := s.rdb.SMembers(ctx, colKey(path)).Result()
	if err != nil {
		return nil, common.Errorf("RedisStore.List %s: %w", path, err)
	}
	out := make(map[string]json.RawMessage, len(children))
	for _, child := range children {
		doc, err := s.rdb.Get(ctx, docKey(path+"/"+child)).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // membership can outlive a nulled document
			}
			return nil, common.Errorf("RedisStore.List %s/%s: %w", path, child, err)
		}
		out[child] = doc
	}
	return out, nil
}

func docKey(path string) string { return "doc:" + path }
func colKey(path string) string { return "col:" + path }
