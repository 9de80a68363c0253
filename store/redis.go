package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	brainstorm "github.com/postforge/brainstorm-agents-sdk-go"
)

// RedisArchiveStore implements brainstorm.ArchiveStore using Redis.
// Keys are namespaced as "{prefix}:{namespace}:{key}" for KV
// and "{prefix}:{namespace}:list:{key}" for lists.
type RedisArchiveStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	ctx    context.Context
}

// RedisStoreConfig configures the Redis store.
type RedisStoreConfig struct {
	Prefix string        // key prefix, default "bstorm"
	TTL    time.Duration // default TTL for KV entries, 0 = no expiry
}

// NewRedisArchiveStore creates an ArchiveStore backed by Redis.
// Works with go-redis Client, ClusterClient, and Ring.
func NewRedisArchiveStore(client redis.UniversalClient, config ...RedisStoreConfig) *RedisArchiveStore {
	cfg := RedisStoreConfig{Prefix: "bstorm"}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "bstorm"
	}
	return &RedisArchiveStore{
		client: client,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
		ctx:    context.Background(),
	}
}

// Dial opens a Redis connection and returns a store on top of it.
// Convenience for hosts configured via brainstorm.EngineConfig.
func Dial(addr, password string, db int, config ...RedisStoreConfig) (*RedisArchiveStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedisArchiveStore(client, config...), nil
}

func (r *RedisArchiveStore) kvKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, namespace, key)
}

func (r *RedisArchiveStore) listKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s:list:%s", r.prefix, namespace, key)
}

func (r *RedisArchiveStore) Get(namespace, key string) (string, error) {
	val, err := r.client.Get(r.ctx, r.kvKey(namespace, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return val, nil
}

func (r *RedisArchiveStore) Set(namespace, key, value string) error {
	return r.client.Set(r.ctx, r.kvKey(namespace, key), value, r.ttl).Err()
}

func (r *RedisArchiveStore) Delete(namespace, key string) error {
	return r.client.Del(r.ctx, r.kvKey(namespace, key)).Err()
}

func (r *RedisArchiveStore) Append(namespace, key, value string) error {
	return r.client.RPush(r.ctx, r.listKey(namespace, key), value).Err()
}

func (r *RedisArchiveStore) GetList(namespace, key string, limit, offset int) ([]string, error) {
	start := int64(offset)
	var stop int64
	if limit > 0 {
		stop = start + int64(limit) - 1
	} else {
		stop = -1
	}
	return r.client.LRange(r.ctx, r.listKey(namespace, key), start, stop).Result()
}

func (r *RedisArchiveStore) ListLength(namespace, key string) (int, error) {
	n, err := r.client.LLen(r.ctx, r.listKey(namespace, key)).Result()
	return int(n), err
}

func (r *RedisArchiveStore) Close() error {
	return r.client.Close()
}

// Compile-time interface check.
var _ brainstorm.ArchiveStore = (*RedisArchiveStore)(nil)
