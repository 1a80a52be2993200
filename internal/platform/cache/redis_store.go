package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-redis/redis/v8"
	"github.com/riskibarqy/floorball-league/internal/platform/logging"
	"golang.org/x/sync/singleflight"
)

const (
	redisScanBatch     = 200
	redisGenerationKey = "__generation"
)

var errStaleLoad = errors.New("cache invalidated during load")

// RedisStore keeps sonic-encoded values in redis under a key namespace.
//
// DeletePrefix bumps a generation counter stored next to the entries. A load
// writes back only if that counter is unchanged, checked under WATCH, so a
// load racing an invalidation in any process never re-caches stale data.
type RedisStore struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
	flight    singleflight.Group
}

func NewRedisStore(client *redis.Client, namespace string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client:    client,
		namespace: namespace,
		ttl:       ttl,
	}
}

func (s *RedisStore) key(key string) string {
	if s.namespace == "" {
		return key
	}
	return s.namespace + ":" + key
}

// GetOrLoad returns the stored bytes on a hit. A redis failure degrades to
// calling loader directly.
func (s *RedisStore) GetOrLoad(ctx context.Context, key string, loader Loader) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	fullKey := s.key(key)
	raw, err := s.client.Get(ctx, fullKey).Bytes()
	if err == nil {
		return raw, nil
	}

	value, err, _ := s.flight.Do(fullKey, func() (any, error) {
		generation, genErr := s.generation(ctx, s.client)
		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		if genErr != nil {
			logging.Default().WarnContext(ctx, "redis cache generation unavailable, skipping write", "key", fullKey, "error", genErr)
			return loaded, nil
		}
		payload, marshalErr := sonic.Marshal(loaded)
		if marshalErr != nil {
			return loaded, nil
		}
		if err := s.storeIfCurrent(ctx, fullKey, payload, generation); err != nil && !errors.Is(err, errStaleLoad) {
			logging.Default().WarnContext(ctx, "redis cache write failed", "key", fullKey, "error", err)
		}
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *RedisStore) generation(ctx context.Context, c redis.Cmdable) (int64, error) {
	n, err := c.Get(ctx, s.key(redisGenerationKey)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (s *RedisStore) storeIfCurrent(ctx context.Context, fullKey string, payload []byte, generation int64) error {
	genKey := s.key(redisGenerationKey)
	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := s.generation(ctx, tx)
		if err != nil {
			return err
		}
		if current != generation {
			return errStaleLoad
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, fullKey, payload, s.ttl)
			return nil
		})
		if errors.Is(err, redis.TxFailedErr) {
			return errStaleLoad
		}
		return err
	}, genKey)
}

func (s *RedisStore) DeletePrefix(ctx context.Context, prefix string) error {
	if prefix == "" {
		return nil
	}

	if err := s.client.Incr(ctx, s.key(redisGenerationKey)).Err(); err != nil {
		return fmt.Errorf("bump redis cache generation: %w", err)
	}

	var cursor uint64
	pattern := s.key(prefix) + "*"
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, redisScanBatch).Result()
		if err != nil {
			return fmt.Errorf("scan redis keys %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete redis keys %s: %w", pattern, err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
