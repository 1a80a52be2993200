package cache

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
)

type Loader func(ctx context.Context) (any, error)

// Cache is a read-through cache. Implementations backed by a remote store
// return the stored bytes on a hit; use GetOrLoadAs to get a typed value.
type Cache interface {
	GetOrLoad(ctx context.Context, key string, loader Loader) (any, error)
	DeletePrefix(ctx context.Context, prefix string) error
}

func GetOrLoadAs[T any](ctx context.Context, c Cache, key string, loader func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	value, err := c.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return loader(ctx)
	})
	if err != nil {
		return zero, err
	}

	if typed, ok := value.(T); ok {
		return typed, nil
	}
	raw, ok := value.([]byte)
	if !ok {
		return zero, fmt.Errorf("cache key %s holds %T", key, value)
	}

	var out T
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return out, nil
}
