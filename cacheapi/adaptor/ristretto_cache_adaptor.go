package cachewrap

import (
	"context"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/xxxsen/davfile/cacheapi"
)

type ristrettoCacheWrap[V any] struct {
	c *ristretto.Cache[string, V]
}

func (r *ristrettoCacheWrap[V]) Get(ctx context.Context, k string) (V, error) {
	v, ok := r.c.Get(k)
	if !ok {
		return v, cacheapi.ErrCacheKeyNotExist
	}
	return v, nil
}

func (r *ristrettoCacheWrap[V]) Set(ctx context.Context, k string, v V) error {
	_ = r.c.Set(k, v, 1)
	return nil
}

func (r *ristrettoCacheWrap[V]) Del(ctx context.Context, k string) error {
	r.c.Del(k)
	return nil
}

func WrapRistrettoCache[V any](c *ristretto.Cache[string, V]) cacheapi.ICache[string, V] {
	return &ristrettoCacheWrap[V]{c: c}
}

// NewStringCache 每个key的开销按1计算, maxItems即最多缓存的key数量
func NewStringCache(maxItems int64) (cacheapi.ICache[string, string], error) {
	cc, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters: maxItems * 10,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return WrapRistrettoCache(cc), nil
}
