package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/redis/go-redis/v9"
)

// maxUpdateAttempts bounds the WATCH/MULTI retry loop in Update.
const maxUpdateAttempts = 5

type RedisRepository struct {
	client *redis.Client
	prefix string
}

var (
	_ Repository = (*RedisRepository)(nil)
	_ Updater    = (*RedisRepository)(nil)
)

// NewRedisRepository stores every key as prefix+key.
func NewRedisRepository(client *redis.Client, prefix string) *RedisRepository {
	return &RedisRepository{client: client, prefix: prefix}
}

// OpenRedis dials addr and verifies the connection with PING.
func OpenRedis(ctx context.Context, addr, password string, db int, prefix string) (*RedisRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisRepository(client, prefix), nil
}

func (r *RedisRepository) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", common.ErrorNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get kv[%s]: %w", key, err)
	}
	return v, nil
}

func (r *RedisRepository) Set(ctx context.Context, key string, value string) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set kv[%s]: %w", key, err)
	}
	return nil
}

func (r *RedisRepository) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to remove kv[%s]: %w", key, err)
	}
	return nil
}

// Update uses optimistic locking: the write is discarded and retried when
// another client touches the key between WATCH and EXEC.
func (r *RedisRepository) Update(ctx context.Context, key string, fn UpdateFunc) error {
	full := r.prefix + key

	txf := func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, full).Result()
		found := true
		if errors.Is(err, redis.Nil) {
			found = false
		} else if err != nil {
			return err
		}

		next, err := fn(cur, found)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, full, next, 0)
			return nil
		})
		return err
	}

	for range maxUpdateAttempts {
		err := r.client.Watch(ctx, txf, full)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to update kv[%s]: %w", key, err)
		}
		return nil
	}
	return fmt.Errorf("failed to update kv[%s]: %w", key, redis.TxFailedErr)
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}
